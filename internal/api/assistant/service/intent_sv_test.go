package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	"context"
	"strings"
	"testing"
)

func TestExtractIntentsEmailQuestionStillReturnsIntent(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"should_send_email":false,"to":"","subject":"","body":""}`, nil
	}
	s := newServiceForTest(deps)

	got := s.extractIntents(context.Background(), "jakie mam maile",
		assistant.IntentClassification{NeedsEmail: true}, true, false)

	if got.Email == nil {
		t.Fatal("Email = nil, want an intent with ShouldSendEmail=false")
	}
	if got.Email.ShouldSendEmail {
		t.Error("ShouldSendEmail = true for a read-only question")
	}
}

func TestExtractIntentsEmailSkippedWhenMailboxDisconnected(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	got := s.extractIntents(context.Background(), "wyślij maila do Marka",
		assistant.IntentClassification{NeedsEmail: true}, false, false)

	if got.Email != nil {
		t.Error("Email intent extracted without a connected mailbox")
	}
	if len(deps.openAI.seenExtractPrompts()) != 0 {
		t.Errorf("extractor called %d times, want 0", len(deps.openAI.seenExtractPrompts()))
	}
}

func TestExtractIntentsCalendarEmptyFieldsYieldNil(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"title":"","start_time":"","end_time":"","location":"","description":""}`, nil
	}
	s := newServiceForTest(deps)

	got := s.extractIntents(context.Background(), "co mam w kalendarzu",
		assistant.IntentClassification{NeedsCalendar: true}, false, true)

	if got.Calendar != nil {
		t.Errorf("Calendar = %+v, want nil for an all-empty extraction", got.Calendar)
	}
}

func TestExtractIntentsCalendarEvent(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "```json\n{\"title\":\"Dentysta\",\"start_time\":\"2026-09-03T14:00:00+02:00\",\"end_time\":\"2026-09-03T15:00:00+02:00\",\"location\":\"\",\"description\":\"\"}\n```", nil
	}
	s := newServiceForTest(deps)

	got := s.extractIntents(context.Background(), "umów dentystę na czwartek na czternastą",
		assistant.IntentClassification{NeedsCalendar: true}, false, true)

	if got.Calendar == nil {
		t.Fatal("Calendar = nil, want an event intent")
	}
	if got.Calendar.Title != "Dentysta" {
		t.Errorf("Title = %q", got.Calendar.Title)
	}
}

func TestExtractIntentsSms(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"to":"mama","body":"Będę za 10 minut"}`, nil
	}
	s := newServiceForTest(deps)

	got := s.extractIntents(context.Background(), "wyślij SMS do mamy że będę za 10 minut",
		assistant.IntentClassification{NeedsSms: true}, false, false)

	if got.Sms == nil {
		t.Fatal("Sms = nil, want an intent")
	}
	if got.Sms.To != "mama" || !strings.Contains(got.Sms.Body, "10 minut") {
		t.Errorf("Sms = %+v", got.Sms)
	}
}

func TestExtractIntentsFailedExtractorYieldsNil(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	got := s.extractIntents(context.Background(), "wyślij SMS do mamy",
		assistant.IntentClassification{NeedsSms: true}, false, false)

	if got.Sms != nil {
		t.Errorf("Sms = %+v, want nil after a failed extraction", got.Sms)
	}
}
