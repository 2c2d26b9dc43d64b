package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	contextPkg "AsystentGolang/pkg/context"
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const fallbackReply = "Przepraszam, nie udało mi się przygotować odpowiedzi. Spróbuj ponownie."

const (
	replyMaxTokens       = 200
	searchReplyMaxTokens = 1024
	replyTemperature     = 0.7
)

// respond produces the spoken reply. Web-search questions go through the
// search-grounded model, everything else through the chat model. Both
// failures end in the apology fallback, never in a pipeline error.
func (s *assistantService) respond(
	ctx context.Context,
	session assistant.Session,
	transcript string,
	classification assistant.IntentClassification,
	fragments []assistant.ContextFragment,
	opts assistant.VoiceOptions,
) string {
	requestID := contextPkg.GetRequestID(ctx)

	system := s.buildSystemPrompt(session, fragments, opts)
	userPrompt := s.buildUserPrompt(ctx, session, transcript)

	var reply string
	var err error

	if classification.NeedsWebSearch && s.gemini != nil {
		emitStatus(opts, assistant.StatusWebSearching)
		reply, err = s.gemini.GenerateWithSearch(ctx, system, userPrompt, searchReplyMaxTokens)
	} else {
		emitStatus(opts, assistant.StatusPreparingResponse)
		reply, err = s.openAI.Complete(ctx, system, userPrompt, replyMaxTokens, replyTemperature)
	}

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Response generation failed")
		return fallbackReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fallbackReply
	}

	return reply
}

func (s *assistantService) buildSystemPrompt(session assistant.Session, fragments []assistant.ContextFragment, opts assistant.VoiceOptions) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Jesteś %s, pomocnym polskim asystentem głosowym.\n", s.config.AssistantName)
	sb.WriteString("Odpowiadaj po polsku, krótko i naturalnie, jak w rozmowie na głos.\n")
	sb.WriteString("Nie czytaj adresów URL ani identyfikatorów.\n")

	if session.UserName != "" {
		fmt.Fprintf(&sb, "Rozmawiasz z użytkownikiem o imieniu %s.\n", session.UserName)
	}
	if opts.Location != "" {
		fmt.Fprintf(&sb, "Użytkownik znajduje się w: %s.\n", opts.Location)
	}

	var unavailable []string
	hasContext := false

	for _, fragment := range fragments {
		if !fragment.Available {
			switch fragment.Source {
			case sourceMail:
				unavailable = append(unavailable, "skrzynka pocztowa nie jest połączona")
			case sourceCalendar:
				unavailable = append(unavailable, "kalendarz jest niedostępny lub pusty")
			case sourceContacts:
				unavailable = append(unavailable, "kontakty są niedostępne")
			case sourcePlaces:
				unavailable = append(unavailable, "wyszukiwanie miejsc jest niedostępne")
			}
			continue
		}
		if fragment.Text == "" {
			continue
		}
		if !hasContext {
			sb.WriteString("\nInformacje kontekstowe:\n")
			hasContext = true
		}
		sb.WriteString(fragment.Text)
		sb.WriteString("\n")
	}

	if len(unavailable) > 0 {
		fmt.Fprintf(&sb, "\nUwaga: %s. Poinformuj o tym użytkownika, jeśli pytał o te dane.\n",
			strings.Join(unavailable, "; "))
	}

	return sb.String()
}

// buildUserPrompt prepends the short-term conversation memory so follow-up
// questions keep their referent.
func (s *assistantService) buildUserPrompt(ctx context.Context, session assistant.Session, transcript string) string {
	turns, err := s.cache.GetConversation(ctx, session.UserID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Conversation memory unavailable")
	}

	if len(turns) == 0 {
		return transcript
	}

	var sb strings.Builder
	sb.WriteString("Poprzednia rozmowa:\n")
	for _, turn := range turns {
		if turn.Role == "assistant" {
			fmt.Fprintf(&sb, "Asystent: %s\n", turn.Content)
		} else {
			fmt.Fprintf(&sb, "Użytkownik: %s\n", turn.Content)
		}
	}
	fmt.Fprintf(&sb, "\nAktualna wypowiedź użytkownika: %s", transcript)

	return sb.String()
}
