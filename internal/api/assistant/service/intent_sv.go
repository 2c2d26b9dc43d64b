package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	contextPkg "AsystentGolang/pkg/context"
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const emailIntentSystemPrompt = `Analizujesz polską wypowiedź pod kątem prośby o wysłanie maila.
Zwróć wyłącznie obiekt JSON:
{"should_send_email": bool, "to": "...", "subject": "...", "body": "..."}
should_send_email=true tylko gdy użytkownik wprost prosi o wysłanie lub
napisanie maila. Pytanie o odebrane maile to should_send_email=false.
Treść maila napisz po polsku, uprzejmie, na podstawie wypowiedzi.`

const calendarIntentSystemPrompt = `Analizujesz polską wypowiedź pod kątem prośby o dodanie wydarzenia do kalendarza.
Zwróć wyłącznie obiekt JSON:
{"title": "...", "start_time": "...", "end_time": "...", "location": "...", "description": "..."}
Czasy podaj w formacie RFC3339. Jeśli wypowiedź nie jest prośbą o dodanie
wydarzenia, zwróć wszystkie pola puste.`

const smsIntentSystemPrompt = `Analizujesz polską wypowiedź pod kątem prośby o wysłanie SMS-a.
Zwróć wyłącznie obiekt JSON: {"to": "...", "body": "..."}
W polu to wpisz imię lub numer odbiorcy. Jeśli wypowiedź nie jest prośbą o
wysłanie SMS-a, zwróć oba pola puste.`

// extractedIntents is the joined output of the three extractor goroutines.
type extractedIntents struct {
	Email    *assistant.EmailIntent
	Calendar *assistant.CalendarIntent
	Sms      *assistant.SmsIntent
}

// extractIntents runs the three extractors concurrently. Email and calendar
// extraction only run when the matching account is actually connected, so the
// client never receives an intent it cannot act on. A failed extractor yields
// nil, not an error.
func (s *assistantService) extractIntents(
	ctx context.Context,
	transcript string,
	classification assistant.IntentClassification,
	mailConnected bool,
	calendarConnected bool,
) extractedIntents {
	var intents extractedIntents
	var wg sync.WaitGroup

	if classification.NeedsEmail && mailConnected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			intents.Email = s.extractEmailIntent(ctx, transcript)
		}()
	}

	if classification.NeedsCalendar && calendarConnected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			intents.Calendar = s.extractCalendarIntent(ctx, transcript)
		}()
	}

	if classification.NeedsSms {
		wg.Add(1)
		go func() {
			defer wg.Done()
			intents.Sms = s.extractSmsIntent(ctx, transcript)
		}()
	}

	wg.Wait()
	return intents
}

func (s *assistantService) extractEmailIntent(ctx context.Context, transcript string) *assistant.EmailIntent {
	raw, err := s.openAI.ExtractJSON(ctx, emailIntentSystemPrompt, transcript)
	if err != nil {
		s.logExtractionFailure(ctx, "email", err)
		return nil
	}

	intent, err := decodeModelJSON[assistant.EmailIntent](raw)
	if err != nil {
		s.logExtractionFailure(ctx, "email", err)
		return nil
	}

	return &intent
}

func (s *assistantService) extractCalendarIntent(ctx context.Context, transcript string) *assistant.CalendarIntent {
	raw, err := s.openAI.ExtractJSON(ctx, calendarIntentSystemPrompt, transcript)
	if err != nil {
		s.logExtractionFailure(ctx, "calendar", err)
		return nil
	}

	intent, err := decodeModelJSON[assistant.CalendarIntent](raw)
	if err != nil {
		s.logExtractionFailure(ctx, "calendar", err)
		return nil
	}

	if strings.TrimSpace(intent.Title) == "" && strings.TrimSpace(intent.StartTime) == "" {
		return nil
	}

	return &intent
}

func (s *assistantService) extractSmsIntent(ctx context.Context, transcript string) *assistant.SmsIntent {
	raw, err := s.openAI.ExtractJSON(ctx, smsIntentSystemPrompt, transcript)
	if err != nil {
		s.logExtractionFailure(ctx, "sms", err)
		return nil
	}

	intent, err := decodeModelJSON[assistant.SmsIntent](raw)
	if err != nil {
		s.logExtractionFailure(ctx, "sms", err)
		return nil
	}

	if strings.TrimSpace(intent.To) == "" && strings.TrimSpace(intent.Body) == "" {
		return nil
	}

	return &intent
}

func (s *assistantService) logExtractionFailure(ctx context.Context, kind string, err error) {
	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"intent":     kind,
		"error":      err.Error(),
	}).Warn("Intent extraction failed")
}
