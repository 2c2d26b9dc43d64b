package assistantService

import (
	"AsystentGolang/pkg/gmailapi"
	"context"
	"strings"
	"testing"
)

func TestGenerateGmailQueryFallsBackToDefault(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	got := s.generateGmailQuery(context.Background(), "jakie maile przyszły wczoraj")

	if got.Query != defaultGmailQuery {
		t.Errorf("Query = %q, want %q", got.Query, defaultGmailQuery)
	}
	if got.QueryWithoutSender != defaultGmailQuery {
		t.Errorf("QueryWithoutSender = %q, want %q", got.QueryWithoutSender, defaultGmailQuery)
	}
	if got.HasSender {
		t.Error("HasSender = true on fallback, want false")
	}
}

func TestGenerateGmailQueryDecodesModelPayload(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "```json\n{\"query\":\"in:inbox after:2026/08/31\",\"query_without_sender\":\"in:inbox after:2026/08/31\",\"has_sender\":true,\"sender_hint\":\"Marek\"}\n```", nil
	}
	s := newServiceForTest(deps)

	got := s.generateGmailQuery(context.Background(), "jakie maile przyszły wczoraj od Marka")

	if got.Query != "in:inbox after:2026/08/31" {
		t.Errorf("Query = %q", got.Query)
	}
	if !got.HasSender || got.SenderHint != "Marek" {
		t.Errorf("sender = (%v, %q), want (true, Marek)", got.HasSender, got.SenderHint)
	}
	if strings.Contains(got.Query, "from:") {
		t.Errorf("query %q carries a from: operator", got.Query)
	}
}

func TestGenerateGmailQueryEmptySenderHintClearsFlag(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"query":"in:inbox","query_without_sender":"","has_sender":true,"sender_hint":"  "}`, nil
	}
	s := newServiceForTest(deps)

	got := s.generateGmailQuery(context.Background(), "jakie mam maile")

	if got.HasSender {
		t.Error("HasSender = true with blank sender hint, want false")
	}
	if got.QueryWithoutSender != "in:inbox" {
		t.Errorf("QueryWithoutSender = %q, want fallback to Query", got.QueryWithoutSender)
	}
}

func TestFilterBySenderKeepsMatchingMessages(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"matching_indices":[1,3,9]}`, nil
	}
	s := newServiceForTest(deps)

	messages := []gmailapi.Message{
		{ID: "a", From: "Marek Nowak <marek@example.com>"},
		{ID: "b", From: "Biuro <biuro@example.com>"},
		{ID: "c", From: "M. Nowak <m.nowak@example.com>"},
	}

	got := s.filterBySender(context.Background(), messages, "Marek")

	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("filtered IDs = %s, %s; want a, c", got[0].ID, got[1].ID)
	}
}

func TestFilterBySenderFailureKeepsAll(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	messages := []gmailapi.Message{
		{ID: "a", From: "ktoś"},
		{ID: "b", From: "ktoś inny"},
	}

	got := s.filterBySender(context.Background(), messages, "Anna")

	if len(got) != len(messages) {
		t.Fatalf("got %d messages after failed filtering, want %d", len(got), len(messages))
	}
}

func TestFilterBySenderNoMatches(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return `{"matching_indices":[]}`, nil
	}
	s := newServiceForTest(deps)

	got := s.filterBySender(context.Background(), []gmailapi.Message{{ID: "a"}}, "Anna")

	if len(got) != 0 {
		t.Fatalf("got %d messages, want 0", len(got))
	}
}

func TestDecodeModelJSONStripsFences(t *testing.T) {
	type payload struct {
		Value string `json:"value"`
	}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"value":"x"}`, "x"},
		{"fenced", "```json\n{\"value\":\"y\"}\n```", "y"},
		{"bare fence", "```\n{\"value\":\"z\"}\n```", "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeModelJSON[payload](tt.raw)
			if err != nil {
				t.Fatalf("decodeModelJSON: %v", err)
			}
			if got.Value != tt.want {
				t.Errorf("Value = %q, want %q", got.Value, tt.want)
			}
		})
	}

	if _, err := decodeModelJSON[payload]("nie json"); err == nil {
		t.Error("expected error for non-JSON payload")
	}
	if _, err := decodeModelJSON[payload](""); err == nil {
		t.Error("expected error for empty payload")
	}
}
