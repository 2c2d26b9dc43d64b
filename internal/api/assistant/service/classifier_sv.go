package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	contextPkg "AsystentGolang/pkg/context"
	"context"

	"github.com/sirupsen/logrus"
)

const classifySystemPrompt = `Jesteś klasyfikatorem intencji polskiego asystenta głosowego.
Dla podanej wypowiedzi zwróć wyłącznie obiekt JSON o polach:
{
  "needs_email": bool,
  "needs_calendar": bool,
  "needs_sms": bool,
  "needs_contacts": bool,
  "is_simple_greeting": bool,
  "needs_web_search": bool,
  "needs_places_search": bool,
  "confidence": "high" | "medium" | "low"
}
needs_email: pytania o maile lub prośby o wysłanie maila.
needs_calendar: pytania o spotkania, terminy, plan dnia lub prośby o dodanie wydarzenia.
needs_sms: prośby o wysłanie SMS-a lub wiadomości tekstowej.
needs_contacts: pytania o numery telefonów lub adresy osób z książki adresowej.
is_simple_greeting: samo powitanie albo pogawędka bez żadnej prośby.
needs_web_search: pytania wymagające aktualnych informacji z internetu (pogoda, kursy, newsy).
needs_places_search: pytania o miejsca w okolicy użytkownika.`

type modelClassification struct {
	NeedsEmail        bool   `json:"needs_email"`
	NeedsCalendar     bool   `json:"needs_calendar"`
	NeedsSms          bool   `json:"needs_sms"`
	NeedsContacts     bool   `json:"needs_contacts"`
	IsSimpleGreeting  bool   `json:"is_simple_greeting"`
	NeedsWebSearch    bool   `json:"needs_web_search"`
	NeedsPlacesSearch bool   `json:"needs_places_search"`
	Confidence        string `json:"confidence"`
}

// classifyIntent runs the two-tier classification. The local keyword pass is
// always computed and is the fallback for every model failure, so a broken
// model call can only cost quality, never the whole run.
func (s *assistantService) classifyIntent(ctx context.Context, transcript string) assistant.IntentClassification {
	requestID := contextPkg.GetRequestID(ctx)

	local := s.classifier.Classify(transcript)
	localResult := assistant.IntentClassification{
		NeedsEmail:        local.NeedsEmail,
		NeedsCalendar:     local.NeedsCalendar,
		NeedsSms:          local.NeedsSms,
		NeedsContacts:     local.NeedsContacts,
		IsSimpleGreeting:  local.IsSimpleGreeting,
		NeedsWebSearch:    local.NeedsWebSearch,
		NeedsPlacesSearch: local.NeedsPlacesSearch,
		Confidence:        coerceConfidence(local.Confidence),
	}

	if localResult.IsFastPath() {
		return localResult
	}

	raw, err := s.openAI.ExtractJSON(ctx, classifySystemPrompt, transcript)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Model classification failed, using keyword classification")
		return localResult
	}

	parsed, err := decodeModelJSON[modelClassification](raw)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Model classification unparsable, using keyword classification")
		return localResult
	}

	return assistant.IntentClassification{
		NeedsEmail:        parsed.NeedsEmail,
		NeedsCalendar:     parsed.NeedsCalendar,
		NeedsSms:          parsed.NeedsSms,
		NeedsContacts:     parsed.NeedsContacts,
		IsSimpleGreeting:  parsed.IsSimpleGreeting,
		NeedsWebSearch:    parsed.NeedsWebSearch,
		NeedsPlacesSearch: parsed.NeedsPlacesSearch,
		Confidence:        coerceConfidence(parsed.Confidence),
	}
}

// coerceConfidence maps anything outside the three known levels to low.
func coerceConfidence(value string) assistant.Confidence {
	switch assistant.Confidence(value) {
	case assistant.ConfidenceHigh:
		return assistant.ConfidenceHigh
	case assistant.ConfidenceMedium:
		return assistant.ConfidenceMedium
	default:
		return assistant.ConfidenceLow
	}
}
