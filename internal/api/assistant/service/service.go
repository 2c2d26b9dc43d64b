package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	assistantRepository "AsystentGolang/internal/api/assistant/repository"
	"AsystentGolang/pkg/contacts"
	"AsystentGolang/pkg/gcalendar"
	"AsystentGolang/pkg/gemini"
	"AsystentGolang/pkg/gmailapi"
	"AsystentGolang/pkg/nlp"
	"AsystentGolang/pkg/openai"
	"AsystentGolang/pkg/places"
	redisPkg "AsystentGolang/pkg/redis"
	"AsystentGolang/pkg/s3"
	"AsystentGolang/pkg/utils"
	"AsystentGolang/pkg/whatsapp"
	"context"
	"mime/multipart"

	"github.com/sirupsen/logrus"
)

type IAssistantService interface {
	ProcessVoiceQuery(ctx context.Context, session assistant.Session, audioFile *multipart.FileHeader, opts assistant.VoiceOptions) (*assistant.VoiceProcessResult, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]assistant.ExchangeHistory, error)
	SendSms(ctx context.Context, req assistant.SendSmsRequest) error
}

type assistantService struct {
	log        *logrus.Logger
	repo       assistantRepository.Repository
	s3Client   s3.ItfS3
	utils      utils.IUtils
	openAI     openai.IOpenAI
	gemini     gemini.IGemini
	gmail      gmailapi.IGmail
	calendar   gcalendar.ICalendar
	contacts   contacts.IContacts
	places     places.IPlaces
	whatsapp   whatsapp.IWhatsappSender
	cache      redisPkg.IRedis
	classifier *nlp.Classifier
	config     *Config
}

type Config struct {
	Language       string `json:"language"`
	AssistantName  string `json:"assistant_name"`
	MaxFileSize    int64  `json:"max_file_size"`
	MaxMailFetch   int64  `json:"max_mail_fetch"`
	MaxMailResults int    `json:"max_mail_results"`
}

func DefaultConfig() *Config {
	return &Config{
		Language:       "pl",
		AssistantName:  "Asystent",
		MaxFileSize:    15 * 1024 * 1024,
		MaxMailFetch:   50,
		MaxMailResults: 10,
	}
}

func New(
	log *logrus.Logger,
	repo assistantRepository.Repository,
	s3Client s3.ItfS3,
	utilsPkg utils.IUtils,
	openAI openai.IOpenAI,
	geminiClient gemini.IGemini,
	gmail gmailapi.IGmail,
	calendar gcalendar.ICalendar,
	contactsClient contacts.IContacts,
	placesClient places.IPlaces,
	whatsappSender whatsapp.IWhatsappSender,
	cache redisPkg.IRedis,
	config *Config,
) IAssistantService {
	if config == nil {
		config = DefaultConfig()
	}

	return &assistantService{
		log:        log,
		repo:       repo,
		s3Client:   s3Client,
		utils:      utilsPkg,
		openAI:     openAI,
		gemini:     geminiClient,
		gmail:      gmail,
		calendar:   calendar,
		contacts:   contactsClient,
		places:     placesClient,
		whatsapp:   whatsappSender,
		cache:      cache,
		classifier: nlp.NewClassifier(),
		config:     config,
	}
}
