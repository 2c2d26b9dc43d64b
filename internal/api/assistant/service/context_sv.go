package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	contextPkg "AsystentGolang/pkg/context"
	"AsystentGolang/pkg/nlp"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	sourceCaller   = "caller"
	sourceMail     = "mail"
	sourceCalendar = "calendar"
	sourcePlaces   = "places"
	sourceContacts = "contacts"

	noMailFoundText      = "Nie znaleziono żadnych maili pasujących do pytania."
	noMailFromSenderText = "Znaleziono maile, ale żaden nie pochodzi od wskazanego nadawcy."
)

var contactNamePattern = regexp.MustCompile(`\b(?:do|od|dla|z)\s+([a-z]+)`)

// aggregationResult carries the branch outputs plus the connectivity facts
// the intent extractors are gated on.
type aggregationResult struct {
	Fragments         []assistant.ContextFragment
	MailConnected     bool
	CalendarConnected bool
}

// aggregateContext fans out one goroutine per needed provider and joins them
// all before returning. Branch failures degrade to an unavailable fragment;
// no branch can take down a sibling or the run.
func (s *assistantService) aggregateContext(
	ctx context.Context,
	session assistant.Session,
	transcript string,
	classification assistant.IntentClassification,
	opts assistant.VoiceOptions,
) aggregationResult {
	// Fixed slots keep fragment order deterministic regardless of which
	// goroutine finishes first.
	var (
		mailFragment     *assistant.ContextFragment
		calendarFragment *assistant.ContextFragment
		placesFragment   *assistant.ContextFragment
		contactsFragment *assistant.ContextFragment
	)

	result := aggregationResult{}
	requestID := contextPkg.GetRequestID(ctx)

	var wg sync.WaitGroup

	if classification.NeedsEmail {
		emitStatus(opts, assistant.StatusCheckingEmail)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.WithFields(logrus.Fields{"request_id": requestID, "panic": r}).Error("Mail context branch panicked")
					mailFragment = &assistant.ContextFragment{Source: sourceMail, Available: false}
				}
			}()
			fragment, connected := s.buildMailFragment(ctx, session, transcript)
			mailFragment = &fragment
			result.MailConnected = connected
		}()
	}

	if classification.NeedsCalendar {
		emitStatus(opts, assistant.StatusCheckingCalendar)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.WithFields(logrus.Fields{"request_id": requestID, "panic": r}).Error("Calendar context branch panicked")
					calendarFragment = &assistant.ContextFragment{Source: sourceCalendar, Available: false}
				}
			}()
			fragment, connected := s.buildCalendarFragment(ctx, session)
			calendarFragment = &fragment
			result.CalendarConnected = connected
		}()
	}

	if classification.NeedsPlacesSearch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.WithFields(logrus.Fields{"request_id": requestID, "panic": r}).Error("Places context branch panicked")
					placesFragment = &assistant.ContextFragment{Source: sourcePlaces, Available: false}
				}
			}()
			fragment := s.buildPlacesFragment(ctx, transcript, opts)
			placesFragment = &fragment
		}()
	}

	if classification.NeedsContacts {
		emitStatus(opts, assistant.StatusCheckingContacts)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.WithFields(logrus.Fields{"request_id": requestID, "panic": r}).Error("Contacts context branch panicked")
					contactsFragment = &assistant.ContextFragment{Source: sourceContacts, Available: false}
				}
			}()
			fragment := s.buildContactsFragment(ctx, session, transcript)
			contactsFragment = &fragment
		}()
	}

	wg.Wait()

	if strings.TrimSpace(opts.Context) != "" {
		result.Fragments = append(result.Fragments, assistant.ContextFragment{
			Source:    sourceCaller,
			Text:      opts.Context,
			Available: true,
		})
	}
	for _, fragment := range []*assistant.ContextFragment{mailFragment, calendarFragment, placesFragment, contactsFragment} {
		if fragment != nil {
			result.Fragments = append(result.Fragments, *fragment)
		}
	}

	return result
}

// buildMailFragment runs the whole mail branch: connectivity probe, query
// generation, search and optional sender narrowing. An empty mailbox is a
// real answer and stays available, unlike the other sources.
func (s *assistantService) buildMailFragment(ctx context.Context, session assistant.Session, transcript string) (assistant.ContextFragment, bool) {
	requestID := contextPkg.GetRequestID(ctx)
	unavailable := assistant.ContextFragment{Source: sourceMail, Available: false}

	if !session.HasGoogleToken() {
		return unavailable, false
	}

	if _, err := s.gmail.Status(ctx, session.GoogleToken); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Gmail connectivity probe failed")
		return unavailable, false
	}

	queryResult := s.generateGmailQuery(ctx, transcript)

	messages, err := s.gmail.Search(ctx, session.GoogleToken, queryResult.QueryWithoutSender, s.config.MaxMailFetch)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"query":      queryResult.QueryWithoutSender,
			"error":      err.Error(),
		}).Warn("Gmail search failed")
		return unavailable, true
	}

	if len(messages) == 0 {
		return assistant.ContextFragment{
			Source:    sourceMail,
			Text:      noMailFoundText,
			Available: true,
		}, true
	}

	if queryResult.HasSender {
		messages = s.filterBySender(ctx, messages, queryResult.SenderHint)
		if len(messages) == 0 {
			return assistant.ContextFragment{
				Source:    sourceMail,
				Text:      noMailFromSenderText,
				Available: true,
			}, true
		}
	}

	if len(messages) > s.config.MaxMailResults {
		messages = messages[:s.config.MaxMailResults]
	}

	return assistant.ContextFragment{
		Source:    sourceMail,
		Text:      "Maile użytkownika:\n" + formatMessages(messages),
		Available: true,
	}, true
}

func (s *assistantService) buildCalendarFragment(ctx context.Context, session assistant.Session) (assistant.ContextFragment, bool) {
	requestID := contextPkg.GetRequestID(ctx)
	unavailable := assistant.ContextFragment{Source: sourceCalendar, Available: false}

	if !session.HasGoogleToken() {
		return unavailable, false
	}

	if ok, err := s.calendar.Status(ctx, session.GoogleToken); err != nil || !ok {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      errText(err),
		}).Warn("Calendar connectivity probe failed")
		return unavailable, false
	}

	now := time.Now()
	events, err := s.calendar.ListEvents(ctx, session.GoogleToken, now, now.AddDate(0, 0, 7), 20)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Calendar listing failed")
		return unavailable, false
	}

	if len(events) == 0 {
		return unavailable, true
	}

	var sb strings.Builder
	sb.WriteString("Nadchodzące wydarzenia użytkownika:\n")
	for i, event := range events {
		fmt.Fprintf(&sb, "%d. %s (%s - %s)", i+1, event.Summary, event.Start, event.End)
		if event.Location != "" {
			fmt.Fprintf(&sb, " w %s", event.Location)
		}
		sb.WriteString("\n")
	}

	return assistant.ContextFragment{
		Source:    sourceCalendar,
		Text:      strings.TrimRight(sb.String(), "\n"),
		Available: true,
	}, true
}

func (s *assistantService) buildPlacesFragment(ctx context.Context, transcript string, opts assistant.VoiceOptions) assistant.ContextFragment {
	requestID := contextPkg.GetRequestID(ctx)
	unavailable := assistant.ContextFragment{Source: sourcePlaces, Available: false}

	if opts.Latitude == nil || opts.Longitude == nil {
		return unavailable
	}

	found, err := s.places.Search(ctx, *opts.Latitude, *opts.Longitude, nlp.Normalize(transcript), 5)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Places search failed")
		return unavailable
	}

	if len(found) == 0 {
		return unavailable
	}

	var sb strings.Builder
	sb.WriteString("Miejsca w pobliżu użytkownika:\n")
	for i, place := range found {
		fmt.Fprintf(&sb, "%d. %s, %s", i+1, place.Name, place.Address)
		if place.Rating > 0 {
			fmt.Fprintf(&sb, " (ocena %.1f)", place.Rating)
		}
		if place.OpenNow != nil {
			if *place.OpenNow {
				sb.WriteString(", otwarte teraz")
			} else {
				sb.WriteString(", teraz zamknięte")
			}
		}
		sb.WriteString("\n")
	}

	return assistant.ContextFragment{
		Source:    sourcePlaces,
		Text:      strings.TrimRight(sb.String(), "\n"),
		Available: true,
	}
}

func (s *assistantService) buildContactsFragment(ctx context.Context, session assistant.Session, transcript string) assistant.ContextFragment {
	requestID := contextPkg.GetRequestID(ctx)
	unavailable := assistant.ContextFragment{Source: sourceContacts, Available: false}

	if !session.HasGoogleToken() {
		return unavailable
	}

	if ok, err := s.contacts.Status(ctx, session.GoogleToken); err != nil || !ok {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      errText(err),
		}).Warn("Contacts connectivity probe failed")
		return unavailable
	}

	if name := extractContactName(transcript); name != "" {
		contact, err := s.contacts.FindByName(ctx, session.GoogleToken, name)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Contact lookup failed")
			return unavailable
		}
		if contact != nil {
			return assistant.ContextFragment{
				Source: sourceContacts,
				Text: fmt.Sprintf("Kontakt: %s, telefony: %s, adresy e-mail: %s",
					contact.Name,
					strings.Join(contact.Phones, ", "),
					strings.Join(contact.Emails, ", ")),
				Available: true,
			}
		}
	}

	all, err := s.contacts.ListAll(ctx, session.GoogleToken)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Contacts listing failed")
		return unavailable
	}

	if len(all) == 0 {
		return unavailable
	}

	if len(all) > 10 {
		all = all[:10]
	}

	var sb strings.Builder
	sb.WriteString("Kontakty użytkownika:\n")
	for i, contact := range all {
		fmt.Fprintf(&sb, "%d. %s", i+1, contact.Name)
		if len(contact.Phones) > 0 {
			fmt.Fprintf(&sb, ", tel. %s", strings.Join(contact.Phones, ", "))
		}
		if len(contact.Emails) > 0 {
			fmt.Fprintf(&sb, ", e-mail %s", strings.Join(contact.Emails, ", "))
		}
		sb.WriteString("\n")
	}

	return assistant.ContextFragment{
		Source:    sourceContacts,
		Text:      strings.TrimRight(sb.String(), "\n"),
		Available: true,
	}
}

// extractContactName pulls the name following a preposition, e.g. "numer do
// Marka". The trailing vowel is trimmed so declined forms still match the
// nominative in the contact list ("Anny" finds "Anna").
func extractContactName(transcript string) string {
	matches := contactNamePattern.FindStringSubmatch(nlp.Normalize(transcript))
	if len(matches) < 2 {
		return ""
	}

	name := matches[1]
	if len(name) > 3 && strings.ContainsRune("aeiouy", rune(name[len(name)-1])) {
		name = name[:len(name)-1]
	}
	return name
}
