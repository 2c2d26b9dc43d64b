package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	"AsystentGolang/internal/entity"
	contextPkg "AsystentGolang/pkg/context"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessVoiceQuery runs a single voice exchange end to end. Transcription is
// the only fatal stage; from classification on, every failure degrades into a
// weaker but valid reply.
func (s *assistantService) ProcessVoiceQuery(
	ctx context.Context,
	session assistant.Session,
	audioFile *multipart.FileHeader,
	opts assistant.VoiceOptions,
) (*assistant.VoiceProcessResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.validateAudioFile(audioFile); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Audio validation failed")
		return nil, err
	}

	audioURL, err := s.s3Client.UploadFile(audioFile)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to upload audio")
		return nil, err
	}

	emitStatus(opts, assistant.StatusTranscribing)

	transcript, err := s.transcribeAudio(ctx, audioURL, opts.Language)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Transcription failed")
		// The recording is useless without a transcript, drop it from storage.
		if delErr := s.s3Client.DeleteFile(audioURL); delErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      delErr.Error(),
			}).Warn("Failed to delete unusable recording")
		}
		return nil, assistant.ErrTranscriptionFailed
	}

	emitTranscript(opts, transcript)
	emitStatus(opts, assistant.StatusClassifying)

	classification := s.classifyIntent(ctx, transcript)

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"classification": classification,
	}).Info("Transcript classified")

	var result *assistant.VoiceProcessResult

	if classification.IsFastPath() {
		reply := s.respond(ctx, session, transcript, classification, nil, opts)
		result = &assistant.VoiceProcessResult{
			Transcript: transcript,
			Reply:      reply,
		}
	} else {
		aggregated := s.aggregateContext(ctx, session, transcript, classification, opts)
		reply := s.respond(ctx, session, transcript, classification, aggregated.Fragments, opts)
		intents := s.extractIntents(ctx, transcript, classification, aggregated.MailConnected, aggregated.CalendarConnected)

		result = &assistant.VoiceProcessResult{
			Transcript:     transcript,
			Reply:          reply,
			EmailIntent:    intents.Email,
			CalendarIntent: intents.Calendar,
			SmsIntent:      intents.Sms,
		}
	}

	emitStatus(opts, assistant.StatusNone)

	go s.persistExchange(requestID, session, audioURL, result)

	return result, nil
}

func (s *assistantService) GetHistory(ctx context.Context, userID string, limit int) ([]assistant.ExchangeHistory, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	exchanges, err := repo.Exchange.GetExchangesByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	var history []assistant.ExchangeHistory
	for _, exchange := range exchanges {
		audioURL := exchange.AudioFile
		if audioURL != "" {
			if presigned, err := s.s3Client.PresignUrl(audioURL); err == nil {
				audioURL = presigned
			}
		}

		history = append(history, assistant.ExchangeHistory{
			ID:         exchange.ID,
			UserID:     exchange.UserID,
			AudioFile:  audioURL,
			Transcript: exchange.Transcript,
			Reply:      exchange.Reply,
			Intents:    string(exchange.Intents),
			CreatedAt:  exchange.CreatedAt,
		})
	}

	return history, nil
}

func (s *assistantService) SendSms(ctx context.Context, req assistant.SendSmsRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	if s.whatsapp == nil || !s.whatsapp.IsConnected() {
		return assistant.ErrSmsChannelOffline
	}

	if err := s.whatsapp.SendMessage(ctx, req.PhoneNumber, req.Text); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to send SMS message")
		return err
	}

	return nil
}

func (s *assistantService) validateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return assistant.ErrInvalidAudioFile
	}

	if file.Size > s.config.MaxFileSize {
		return assistant.ErrAudioFileTooLarge
	}

	if err := s.utils.ValidateAudioFile(file); err != nil {
		return assistant.ErrUnsupportedFormat
	}

	return nil
}

// transcribeAudio pulls the uploaded recording back from S3 into a temp file
// for the transcription API.
func (s *assistantService) transcribeAudio(ctx context.Context, audioURL, language string) (string, error) {
	presignedURL, err := s.s3Client.PresignUrl(audioURL)
	if err != nil {
		return "", err
	}

	resp, err := http.Get(presignedURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", assistant.ErrTranscriptionFailed
	}

	ext := filepath.Ext(audioURL)
	if ext == "" {
		ext = ".mp3"
	}

	tmpFile, err := os.CreateTemp("", "assistant-*"+ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return "", err
	}

	if language == "" {
		language = s.config.Language
	}

	transcript, err := s.openAI.Transcribe(ctx, tmpFile.Name(), language)
	if err != nil {
		return "", err
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", assistant.ErrTranscriptionFailed
	}

	return transcript, nil
}

// persistExchange stores the finished exchange after the reply has already
// been returned, so storage latency and failures never touch the caller.
func (s *assistantService) persistExchange(requestID string, session assistant.Session, audioURL string, result *assistant.VoiceProcessResult) {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), 15*time.Second)
	defer cancel()

	exchangeID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate exchange ID")
		return
	}

	intents, err := json.Marshal(struct {
		Email    *assistant.EmailIntent    `json:"email_intent,omitempty"`
		Calendar *assistant.CalendarIntent `json:"calendar_intent,omitempty"`
		Sms      *assistant.SmsIntent      `json:"sms_intent,omitempty"`
	}{
		Email:    result.EmailIntent,
		Calendar: result.CalendarIntent,
		Sms:      result.SmsIntent,
	})
	if err != nil {
		intents = []byte("{}")
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client for persistence")
		return
	}

	exchange := entity.Exchange{
		ID:         exchangeID,
		UserID:     session.UserID,
		AudioFile:  audioURL,
		Transcript: result.Transcript,
		Reply:      result.Reply,
		Intents:    intents,
	}

	if err := repo.Exchange.CreateExchange(ctx, exchange); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to persist exchange")
	}

	if err := s.cache.AppendConversation(ctx, session.UserID, result.Transcript, result.Reply); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to append conversation memory")
	}
}
