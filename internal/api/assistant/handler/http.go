package assistantHandler

import (
	assistantService "AsystentGolang/internal/api/assistant/service"
	"AsystentGolang/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
	hub              *statusHub
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	service assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: service,
		hub:              newStatusHub(),
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	assistant.Post("/voice", h.middleware.NewTokenMiddleware, h.ProcessVoice)
	assistant.Get("/voice/ws", h.middleware.NewTokenMiddleware, h.UpgradeStatusStream, websocket.New(h.StatusStream))
	assistant.Get("/history", h.middleware.NewTokenMiddleware, h.GetHistory)
	assistant.Post("/sms", h.middleware.NewTokenMiddleware, h.SendSms)
}
