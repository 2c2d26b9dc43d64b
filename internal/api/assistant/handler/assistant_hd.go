package assistantHandler

import (
	"AsystentGolang/internal/api/assistant"
	contextPkg "AsystentGolang/pkg/context"
	"AsystentGolang/pkg/handlerUtil"
	jwtPkg "AsystentGolang/pkg/jwt"
	"AsystentGolang/pkg/log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"golang.org/x/oauth2"
)

// voiceTimeout caps a full pipeline run, including all model calls.
const voiceTimeout = 60 * time.Second

func (h *AssistantHandler) ProcessVoice(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), voiceTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing voice query request")

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	audioFile, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.Handle(ctx, requestID, assistant.ErrInvalidAudioFile, ctx.Path(), "read_audio_file")
	}

	req := assistant.ProcessVoiceRequest{
		AudioFile: audioFile,
		Language:  ctx.FormValue("language"),
		Context:   ctx.FormValue("context"),
		Location:  ctx.FormValue("location"),
		Latitude:  parseCoordinate(ctx.FormValue("latitude")),
		Longitude: parseCoordinate(ctx.FormValue("longitude")),
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	session := assistant.Session{
		UserID:   userData.ID,
		UserName: userData.Username,
	}
	if accessToken := ctx.FormValue("google_access_token"); accessToken != "" {
		session.GoogleToken = &oauth2.Token{AccessToken: accessToken}
	}

	userID := userData.ID
	opts := assistant.VoiceOptions{
		Language:  req.Language,
		Context:   req.Context,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		OnTranscript: func(text string) {
			h.hub.Publish(userID, streamEvent{Type: "transcript", Value: text})
		},
		OnStatusChange: func(status assistant.ProcessingStatus) {
			h.hub.Publish(userID, streamEvent{Type: "status", Value: string(status)})
		},
	}

	result, err := h.assistantService.ProcessVoiceQuery(c, session, audioFile, opts)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_voice_query")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *AssistantHandler) GetHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	history, err := h.assistantService.GetHistory(c, userData.ID, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_history")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"history": history,
		})
	}
}

func (h *AssistantHandler) SendSms(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req assistant.SendSmsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.assistantService.SendSms(c, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "send_sms")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Message sent",
		})
	}
}

func parseCoordinate(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
