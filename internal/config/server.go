package config

import (
	"AsystentGolang/database/postgres"
	assistantHandler "AsystentGolang/internal/api/assistant/handler"
	assistantRepository "AsystentGolang/internal/api/assistant/repository"
	assistantService "AsystentGolang/internal/api/assistant/service"
	"AsystentGolang/internal/middleware"
	"AsystentGolang/pkg/contacts"
	"AsystentGolang/pkg/gcalendar"
	"AsystentGolang/pkg/gemini"
	"AsystentGolang/pkg/gmailapi"
	"AsystentGolang/pkg/openai"
	"AsystentGolang/pkg/places"
	"AsystentGolang/pkg/redis"
	"AsystentGolang/pkg/s3"
	"AsystentGolang/pkg/utils"
	"AsystentGolang/pkg/whatsapp"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	redisServer    redis.IRedis
	whatsappClient whatsapp.IWhatsappSender
	openAIClient   openai.IOpenAI
	geminiClient   gemini.IGemini
	gmailClient    gmailapi.IGmail
	calendarClient gcalendar.ICalendar
	contactsClient contacts.IContacts
	placesClient   places.IPlaces
	s3Client       s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

// WithWhatsappClient keeps the SMS channel optional: a failed link leaves the
// rest of the assistant running and the SMS endpoint reporting offline.
func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		client, err := whatsapp.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client, SMS channel offline: %v", err)
			}
			return nil
		}
		s.whatsappClient = client
		return nil
	}
}

func WithOpenAIClient() ServerOption {
	return func(s *Server) error {
		s.openAIClient = openai.New()
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithGoogleWorkspaceClients() ServerOption {
	return func(s *Server) error {
		s.gmailClient = gmailapi.New()
		s.calendarClient = gcalendar.New()
		s.contactsClient = contacts.New()
		return nil
	}
}

func WithPlacesClient() ServerOption {
	return func(s *Server) error {
		s.placesClient = places.New()
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Assistant Domain
	assistantRepo := assistantRepository.New(s.db, s.log)
	assistantServices := assistantService.New(
		s.log,
		assistantRepo,
		s.s3Client,
		s.utils,
		s.openAIClient,
		s.geminiClient,
		s.gmailClient,
		s.calendarClient,
		s.contactsClient,
		s.placesClient,
		s.whatsappClient,
		s.redisServer,
		assistantService.DefaultConfig(),
	)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, assistantServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.whatsappClient != nil {
			s.whatsappClient.Disconnect()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
