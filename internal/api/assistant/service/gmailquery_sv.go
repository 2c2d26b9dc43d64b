package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	contextPkg "AsystentGolang/pkg/context"
	"AsystentGolang/pkg/gmailapi"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultGmailQuery = "in:inbox"

const gmailQuerySystemPrompt = `Tłumaczysz polskie wypowiedzi na zapytania wyszukiwarki Gmail.
Zwróć wyłącznie obiekt JSON o polach:
{
  "query": "...",
  "query_without_sender": "...",
  "has_sender": bool,
  "sender_hint": "..."
}
Zasady:
- Używaj operatorów Gmail: in:inbox, is:unread, after:RRRR/MM/DD, before:RRRR/MM/DD, subject:.
- NIGDY nie używaj operatora from:. Jeśli użytkownik wymienia nadawcę z imienia,
  ustaw has_sender=true i wpisz samo imię lub nazwę do sender_hint, a zapytanie
  zostaw bez nadawcy.
- query i query_without_sender mają być identyczne poza tym, że query może
  zawierać słowa kluczowe tematu wspomniane razem z nadawcą.
- Daty względne rozwiązuj według podanych podpowiedzi.
%s`

const senderFilterSystemPrompt = `Dostajesz ponumerowaną listę nagłówków From z maili oraz imię lub nazwę nadawcy.
Zwróć wyłącznie obiekt JSON: {"matching_indices": [..]} z numerami (licząc od 1)
maili, których nadawca pasuje do podanego imienia lub nazwy. Jeśli żaden nie
pasuje, zwróć pustą listę. Uwzględnij zdrobnienia i odmianę polskich imion.`

type senderFilterResult struct {
	MatchingIndices []int `json:"matching_indices"`
}

// generateGmailQuery turns the transcript into a Gmail search query. The
// query never carries a from: operator; a mentioned sender is resolved later
// against actual message headers, because spoken names rarely match address
// strings verbatim.
func (s *assistantService) generateGmailQuery(ctx context.Context, transcript string) assistant.GmailQueryResult {
	requestID := contextPkg.GetRequestID(ctx)

	fallback := assistant.GmailQueryResult{
		Query:              defaultGmailQuery,
		QueryWithoutSender: defaultGmailQuery,
	}

	system := fmt.Sprintf(gmailQuerySystemPrompt, relativeDateHints(time.Now()))

	raw, err := s.openAI.ExtractJSON(ctx, system, transcript)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Gmail query generation failed, using default query")
		return fallback
	}

	result, err := decodeModelJSON[assistant.GmailQueryResult](raw)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Gmail query unparsable, using default query")
		return fallback
	}

	if strings.TrimSpace(result.Query) == "" {
		result.Query = defaultGmailQuery
	}
	if strings.TrimSpace(result.QueryWithoutSender) == "" {
		result.QueryWithoutSender = result.Query
	}
	if strings.TrimSpace(result.SenderHint) == "" {
		result.HasSender = false
	}

	return result
}

// filterBySender narrows messages to those whose From header matches the
// spoken sender hint. On any model failure the unfiltered list is returned;
// too much mail beats silently dropped mail.
func (s *assistantService) filterBySender(ctx context.Context, messages []gmailapi.Message, senderHint string) []gmailapi.Message {
	requestID := contextPkg.GetRequestID(ctx)

	var sb strings.Builder
	for i, msg := range messages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, msg.From)
	}
	fmt.Fprintf(&sb, "\nNadawca: %s", senderHint)

	raw, err := s.openAI.ExtractJSON(ctx, senderFilterSystemPrompt, sb.String())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Sender filtering failed, keeping all messages")
		return messages
	}

	parsed, err := decodeModelJSON[senderFilterResult](raw)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Sender filter unparsable, keeping all messages")
		return messages
	}

	var filtered []gmailapi.Message
	for _, idx := range parsed.MatchingIndices {
		if idx >= 1 && idx <= len(messages) {
			filtered = append(filtered, messages[idx-1])
		}
	}

	return filtered
}

func formatMessages(messages []gmailapi.Message) string {
	var sb strings.Builder
	for i, msg := range messages {
		fmt.Fprintf(&sb, "%d. Od: %s | Temat: %s | Data: %s\n   %s\n",
			i+1, msg.From, msg.Subject, msg.Date, msg.Snippet)
	}
	return strings.TrimRight(sb.String(), "\n")
}
