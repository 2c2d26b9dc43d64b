package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	"context"
	"testing"
)

func TestClassifyIntentGreetingSkipsModel(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	got := s.classifyIntent(context.Background(), "dzień dobry")

	if !got.IsFastPath() {
		t.Fatalf("classification = %+v, want fast path", got)
	}
	if len(deps.openAI.seenExtractPrompts()) != 0 {
		t.Errorf("model consulted for a confident greeting: %d calls", len(deps.openAI.seenExtractPrompts()))
	}
}

func TestClassifyIntentModelOverridesKeywords(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"needs_email":false,"needs_web_search":true,"confidence":"high"}`, nil
	}
	s := newServiceForTest(deps)

	// The keyword pass reads "maila" as an email need; the model knows better.
	got := s.classifyIntent(context.Background(), "czy dostanę maila z potwierdzeniem rezerwacji lotu")

	if got.NeedsEmail {
		t.Error("NeedsEmail = true, want model override to false")
	}
	if !got.NeedsWebSearch {
		t.Error("NeedsWebSearch = false, want model override to true")
	}
	if got.Confidence != assistant.ConfidenceHigh {
		t.Errorf("Confidence = %q, want %q", got.Confidence, assistant.ConfidenceHigh)
	}
}

func TestClassifyIntentModelFailureFallsBackToKeywords(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	got := s.classifyIntent(context.Background(), "jakie maile przyszły wczoraj")

	if !got.NeedsEmail {
		t.Error("NeedsEmail = false, want keyword fallback to true")
	}
	if got.Confidence != assistant.ConfidenceMedium {
		t.Errorf("Confidence = %q, want %q", got.Confidence, assistant.ConfidenceMedium)
	}
}

func TestClassifyIntentUnparsableModelFallsBackToKeywords(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "to nie jest JSON", nil
	}
	s := newServiceForTest(deps)

	got := s.classifyIntent(context.Background(), "co mam jutro w kalendarzu")

	if !got.NeedsCalendar {
		t.Error("NeedsCalendar = false, want keyword fallback to true")
	}
}

func TestCoerceConfidence(t *testing.T) {
	tests := []struct {
		in   string
		want assistant.Confidence
	}{
		{"high", assistant.ConfidenceHigh},
		{"medium", assistant.ConfidenceMedium},
		{"low", assistant.ConfidenceLow},
		{"very high", assistant.ConfidenceLow},
		{"", assistant.ConfidenceLow},
	}

	for _, tt := range tests {
		if got := coerceConfidence(tt.in); got != tt.want {
			t.Errorf("coerceConfidence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
