package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	"AsystentGolang/pkg/contacts"
	"AsystentGolang/pkg/gcalendar"
	"AsystentGolang/pkg/gmailapi"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func fragmentBySource(fragments []assistant.ContextFragment, source string) *assistant.ContextFragment {
	for i := range fragments {
		if fragments[i].Source == source {
			return &fragments[i]
		}
	}
	return nil
}

func TestAggregateContextMailNotConnected(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true}
	session := assistant.Session{UserID: "u1"}

	got := s.aggregateContext(context.Background(), session, "jakie mam maile", classification, assistant.VoiceOptions{})

	if got.MailConnected {
		t.Error("MailConnected = true without a Google token")
	}
	fragment := fragmentBySource(got.Fragments, sourceMail)
	if fragment == nil {
		t.Fatal("mail fragment missing")
	}
	if fragment.Available {
		t.Error("mail fragment available without a token, want unavailable")
	}
	if len(deps.gmail.seenQueries()) != 0 {
		t.Errorf("gmail searched %d times without a token, want 0", len(deps.gmail.seenQueries()))
	}
}

func TestAggregateContextEmptyMailboxIsAnAnswer(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "jakie mam maile", classification, assistant.VoiceOptions{})

	if !got.MailConnected {
		t.Error("MailConnected = false with a working mailbox")
	}
	fragment := fragmentBySource(got.Fragments, sourceMail)
	if fragment == nil {
		t.Fatal("mail fragment missing")
	}
	if !fragment.Available {
		t.Error("empty mailbox fragment unavailable, want available")
	}
	if fragment.Text != noMailFoundText {
		t.Errorf("fragment text = %q, want %q", fragment.Text, noMailFoundText)
	}
}

func TestAggregateContextMailMessagesFormatted(t *testing.T) {
	deps := newTestDeps()
	deps.gmail.messages = []gmailapi.Message{
		{ID: "1", From: "Marek <marek@example.com>", Subject: "Raport", Date: "Mon, 31 Aug 2026", Snippet: "w załączniku"},
		{ID: "2", From: "Anna <anna@example.com>", Subject: "Spotkanie", Date: "Mon, 31 Aug 2026", Snippet: "przesuńmy na 15:00"},
	}
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "jakie mam maile", classification, assistant.VoiceOptions{})

	fragment := fragmentBySource(got.Fragments, sourceMail)
	if fragment == nil || !fragment.Available {
		t.Fatal("expected available mail fragment")
	}
	if !strings.Contains(fragment.Text, "Raport") || !strings.Contains(fragment.Text, "Spotkanie") {
		t.Errorf("fragment text missing message subjects: %q", fragment.Text)
	}
}

func TestAggregateContextSenderExcludesAllMessages(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		if strings.Contains(systemPrompt, "matching_indices") {
			return `{"matching_indices":[]}`, nil
		}
		return `{"query":"in:inbox","query_without_sender":"in:inbox","has_sender":true,"sender_hint":"Marek"}`, nil
	}
	deps.gmail.messages = []gmailapi.Message{
		{ID: "1", From: "Anna <anna@example.com>", Subject: "Spotkanie"},
	}
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "jakie maile przyszły od Marka", classification, assistant.VoiceOptions{})

	fragment := fragmentBySource(got.Fragments, sourceMail)
	if fragment == nil || !fragment.Available {
		t.Fatal("expected available mail fragment")
	}
	if fragment.Text != noMailFromSenderText {
		t.Errorf("fragment text = %q, want the no-mail-from-sender notice", fragment.Text)
	}
}

func TestAggregateContextSenderFilterSkippedWhenMailboxEmpty(t *testing.T) {
	deps := newTestDeps()
	deps.openAI.extractFn = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		if strings.Contains(systemPrompt, "matching_indices") {
			t.Error("sender filtering ran against an empty result set")
		}
		return `{"query":"in:inbox","query_without_sender":"in:inbox","has_sender":true,"sender_hint":"Marek"}`, nil
	}
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "jakie maile przyszły od Marka", classification, assistant.VoiceOptions{})

	fragment := fragmentBySource(got.Fragments, sourceMail)
	if fragment == nil || !fragment.Available {
		t.Fatal("expected available mail fragment")
	}
	if fragment.Text != noMailFoundText {
		t.Errorf("fragment text = %q, want the no-mail notice", fragment.Text)
	}
	if calls := len(deps.openAI.seenExtractPrompts()); calls != 1 {
		t.Errorf("extraction calls = %d, want 1 (query generation only)", calls)
	}
}

func TestAggregateContextDeterministicAcrossRuns(t *testing.T) {
	deps := newTestDeps()
	deps.gmail.messages = []gmailapi.Message{
		{ID: "1", From: "Marek <marek@example.com>", Subject: "Raport", Date: "Mon, 31 Aug 2026", Snippet: "w załączniku"},
	}
	deps.calendar.events = []gcalendar.Event{
		{Summary: "Standup", Start: "2026-09-01T09:00:00+02:00", End: "2026-09-01T09:15:00+02:00"},
	}
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true, NeedsCalendar: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}
	opts := assistant.VoiceOptions{Context: "Użytkownik idzie pieszo."}

	first := s.aggregateContext(context.Background(), session, "jakie mam maile i spotkania", classification, opts)
	second := s.aggregateContext(context.Background(), session, "jakie mam maile i spotkania", classification, opts)

	if !reflect.DeepEqual(first.Fragments, second.Fragments) {
		t.Errorf("fragments differ between runs:\nfirst:  %+v\nsecond: %+v", first.Fragments, second.Fragments)
	}
	if first.MailConnected != second.MailConnected || first.CalendarConnected != second.CalendarConnected {
		t.Errorf("connectivity differs between runs: first %+v, second %+v", first, second)
	}
}

type flakyContacts struct{}

func (flakyContacts) Status(ctx context.Context, token *oauth2.Token) (bool, error) {
	return true, nil
}

func (flakyContacts) ListAll(ctx context.Context, token *oauth2.Token) ([]contacts.Contact, error) {
	panic("nil person in connections page")
}

func (flakyContacts) FindByName(ctx context.Context, token *oauth2.Token, name string) (*contacts.Contact, error) {
	panic("nil person in connections page")
}

func TestAggregateContextBranchPanicIsContained(t *testing.T) {
	deps := newTestDeps()
	deps.calendar.events = []gcalendar.Event{
		{Summary: "Standup", Start: "2026-09-01T09:00:00+02:00", End: "2026-09-01T09:15:00+02:00"},
	}
	s := newServiceForTest(deps)
	s.contacts = flakyContacts{}

	classification := assistant.IntentClassification{NeedsCalendar: true, NeedsContacts: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "co mam w kalendarzu", classification, assistant.VoiceOptions{})

	contactsFragment := fragmentBySource(got.Fragments, sourceContacts)
	if contactsFragment == nil {
		t.Fatal("contacts fragment missing after a branch panic")
	}
	if contactsFragment.Available {
		t.Error("panicking contacts branch yielded an available fragment")
	}

	calendarFragment := fragmentBySource(got.Fragments, sourceCalendar)
	if calendarFragment == nil || !calendarFragment.Available {
		t.Fatal("calendar fragment should survive a sibling panic")
	}
}

func TestAggregateContextBranchFailureDoesNotBlockSiblings(t *testing.T) {
	deps := newTestDeps()
	deps.contacts.err = errors.New("people api down")
	deps.calendar.events = []gcalendar.Event{
		{Summary: "Standup", Start: "2026-09-01T09:00:00+02:00", End: "2026-09-01T09:15:00+02:00"},
	}
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsCalendar: true, NeedsContacts: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "co mam dziś w kalendarzu", classification, assistant.VoiceOptions{})

	calendarFragment := fragmentBySource(got.Fragments, sourceCalendar)
	if calendarFragment == nil || !calendarFragment.Available {
		t.Fatal("calendar fragment should survive a contacts failure")
	}
	if !strings.Contains(calendarFragment.Text, "Standup") {
		t.Errorf("calendar fragment missing event: %q", calendarFragment.Text)
	}

	contactsFragment := fragmentBySource(got.Fragments, sourceContacts)
	if contactsFragment == nil {
		t.Fatal("contacts fragment missing")
	}
	if contactsFragment.Available {
		t.Error("contacts fragment available despite provider failure")
	}
	if !got.CalendarConnected {
		t.Error("CalendarConnected = false with listed events")
	}
}

func TestAggregateContextEmptyCalendarUnavailable(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsCalendar: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "co mam w kalendarzu", classification, assistant.VoiceOptions{})

	fragment := fragmentBySource(got.Fragments, sourceCalendar)
	if fragment == nil {
		t.Fatal("calendar fragment missing")
	}
	if fragment.Available {
		t.Error("empty calendar fragment available, want unavailable")
	}
	if !got.CalendarConnected {
		t.Error("CalendarConnected = false for a reachable but empty calendar")
	}
}

func TestAggregateContextCallerFragmentFirst(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsEmail: true}
	session := assistant.Session{UserID: "u1"}
	opts := assistant.VoiceOptions{Context: "Użytkownik jedzie pociągiem."}

	got := s.aggregateContext(context.Background(), session, "jakie mam maile", classification, opts)

	if len(got.Fragments) == 0 {
		t.Fatal("no fragments")
	}
	if got.Fragments[0].Source != sourceCaller {
		t.Errorf("first fragment source = %q, want %q", got.Fragments[0].Source, sourceCaller)
	}
	if !got.Fragments[0].Available {
		t.Error("caller fragment unavailable")
	}
}

func TestAggregateContextPlacesNeedCoordinates(t *testing.T) {
	deps := newTestDeps()
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsPlacesSearch: true}
	session := assistant.Session{UserID: "u1"}

	got := s.aggregateContext(context.Background(), session, "gdzie jest najbliższa apteka", classification, assistant.VoiceOptions{})

	fragment := fragmentBySource(got.Fragments, sourcePlaces)
	if fragment == nil {
		t.Fatal("places fragment missing")
	}
	if fragment.Available {
		t.Error("places fragment available without coordinates")
	}
}

func TestAggregateContextContactsByName(t *testing.T) {
	deps := newTestDeps()
	deps.contacts.contacts = []contacts.Contact{
		{Name: "Anna Kowalska", Phones: []string{"+48 600 100 200"}, Emails: []string{"anna@example.com"}},
		{Name: "Marek Nowak", Phones: []string{"+48 600 300 400"}},
	}
	s := newServiceForTest(deps)

	classification := assistant.IntentClassification{NeedsContacts: true}
	session := assistant.Session{UserID: "u1", GoogleToken: testToken()}

	got := s.aggregateContext(context.Background(), session, "jaki jest numer do Anny", classification, assistant.VoiceOptions{})

	fragment := fragmentBySource(got.Fragments, sourceContacts)
	if fragment == nil || !fragment.Available {
		t.Fatal("expected available contacts fragment")
	}
	if !strings.Contains(fragment.Text, "Anna Kowalska") {
		t.Errorf("fragment text = %q, want the matched contact", fragment.Text)
	}
	if strings.Contains(fragment.Text, "Marek Nowak") {
		t.Errorf("fragment text %q lists unrelated contacts", fragment.Text)
	}
}

func TestExtractContactName(t *testing.T) {
	tests := []struct {
		transcript string
		want       string
	}{
		{"jaki jest numer do Anny", "ann"},
		{"zadzwoń do Marka", "mark"},
		{"pokaż kontakty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			if got := extractContactName(tt.transcript); got != tt.want {
				t.Errorf("extractContactName(%q) = %q, want %q", tt.transcript, got, tt.want)
			}
		})
	}
}
