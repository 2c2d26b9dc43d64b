package assistantService

import (
	assistantRepository "AsystentGolang/internal/api/assistant/repository"
	"AsystentGolang/internal/api/assistant"
	"AsystentGolang/internal/entity"
	"AsystentGolang/pkg/contacts"
	"AsystentGolang/pkg/gcalendar"
	"AsystentGolang/pkg/gmailapi"
	"AsystentGolang/pkg/nlp"
	"AsystentGolang/pkg/places"
	redisPkg "AsystentGolang/pkg/redis"
	"AsystentGolang/pkg/utils"
	"context"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "test-access-token"}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeOpenAI struct {
	mu sync.Mutex

	transcribeFn func(ctx context.Context, filePath, language string) (string, error)
	completeFn   func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error)
	extractFn    func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	completeSystemPrompts []string
	completeUserPrompts   []string
	extractSystemPrompts  []string
}

func (f *fakeOpenAI) Transcribe(ctx context.Context, filePath, language string) (string, error) {
	if f.transcribeFn != nil {
		return f.transcribeFn(ctx, filePath, language)
	}
	return "transkrypcja testowa", nil
}

func (f *fakeOpenAI) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error) {
	f.mu.Lock()
	f.completeSystemPrompts = append(f.completeSystemPrompts, systemPrompt)
	f.completeUserPrompts = append(f.completeUserPrompts, userPrompt)
	f.mu.Unlock()

	if f.completeFn != nil {
		return f.completeFn(ctx, systemPrompt, userPrompt, maxTokens, temperature)
	}
	return "odpowiedź testowa", nil
}

// ExtractJSON fails by default, which drives every structured-extraction
// caller down its fallback path unless a test supplies extractFn.
func (f *fakeOpenAI) ExtractJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	f.extractSystemPrompts = append(f.extractSystemPrompts, systemPrompt)
	f.mu.Unlock()

	if f.extractFn != nil {
		return f.extractFn(ctx, systemPrompt, userPrompt)
	}
	return "", io.ErrUnexpectedEOF
}

func (f *fakeOpenAI) seenExtractPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.extractSystemPrompts...)
}

func (f *fakeOpenAI) lastCompletePrompts() (system, user string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.completeSystemPrompts); n > 0 {
		system = f.completeSystemPrompts[n-1]
		user = f.completeUserPrompts[n-1]
	}
	return system, user
}

type fakeGemini struct {
	mu        sync.Mutex
	reply     string
	err       error
	calls     int
	maxTokens int32
}

func (f *fakeGemini) GenerateWithSearch(ctx context.Context, systemInstruction, userText string, maxTokens int32) (string, error) {
	f.mu.Lock()
	f.calls++
	f.maxTokens = maxTokens
	f.mu.Unlock()
	return f.reply, f.err
}

type fakeGmail struct {
	mu sync.Mutex

	statusErr error
	messages  []gmailapi.Message
	searchErr error

	searchQueries []string
}

func (f *fakeGmail) Status(ctx context.Context, token *oauth2.Token) (gmailapi.MailStatus, error) {
	if token == nil || token.AccessToken == "" {
		return gmailapi.MailStatus{}, gmailapi.ErrNoToken
	}
	if f.statusErr != nil {
		return gmailapi.MailStatus{}, f.statusErr
	}
	return gmailapi.MailStatus{Connected: true, Email: "user@example.com"}, nil
}

func (f *fakeGmail) Search(ctx context.Context, token *oauth2.Token, query string, maxResults int64) ([]gmailapi.Message, error) {
	f.mu.Lock()
	f.searchQueries = append(f.searchQueries, query)
	f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.messages, nil
}

func (f *fakeGmail) seenQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchQueries...)
}

type fakeCalendar struct {
	events  []gcalendar.Event
	listErr error
}

func (f *fakeCalendar) Status(ctx context.Context, token *oauth2.Token) (bool, error) {
	if token == nil || token.AccessToken == "" {
		return false, gcalendar.ErrNoToken
	}
	return f.listErr == nil, f.listErr
}

func (f *fakeCalendar) ListEvents(ctx context.Context, token *oauth2.Token, from, to time.Time, maxResults int64) ([]gcalendar.Event, error) {
	if token == nil || token.AccessToken == "" {
		return nil, gcalendar.ErrNoToken
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

type fakeContacts struct {
	contacts []contacts.Contact
	err      error
}

func (f *fakeContacts) Status(ctx context.Context, token *oauth2.Token) (bool, error) {
	return f.err == nil, f.err
}

func (f *fakeContacts) ListAll(ctx context.Context, token *oauth2.Token) ([]contacts.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts, nil
}

func (f *fakeContacts) FindByName(ctx context.Context, token *oauth2.Token, name string) (*contacts.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	needle := strings.ToLower(name)
	for _, contact := range f.contacts {
		if strings.Contains(strings.ToLower(contact.Name), needle) {
			found := contact
			return &found, nil
		}
	}
	return nil, nil
}

type fakePlaces struct {
	places []places.Place
	err    error
}

func (f *fakePlaces) Search(ctx context.Context, latitude, longitude float64, keyword string, maxResults int) ([]places.Place, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.places, nil
}

// fakeS3 hands out presigned URLs under presignBase, which tests point at an
// httptest server.
type fakeS3 struct {
	mu          sync.Mutex
	presignBase string
	uploadErr   error
	deleted     []string
}

func (f *fakeS3) UploadFile(file *multipart.FileHeader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "recordings/" + file.Filename, nil
}

func (f *fakeS3) PresignUrl(fileName string) (string, error) {
	return f.presignBase + "/" + fileName, nil
}

func (f *fakeS3) DeleteFile(fileName string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, fileName)
	f.mu.Unlock()
	return nil
}

type fakeRedis struct {
	mu    sync.Mutex
	turns map[string][]redisPkg.ConversationTurn
	err   error
}

func (f *fakeRedis) GetConversation(ctx context.Context, userID string) ([]redisPkg.ConversationTurn, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.turns[userID], nil
}

func (f *fakeRedis) AppendConversation(ctx context.Context, userID, userText, reply string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.turns == nil {
		f.turns = make(map[string][]redisPkg.ConversationTurn)
	}
	f.turns[userID] = append(f.turns[userID],
		redisPkg.ConversationTurn{Role: "user", Content: userText},
		redisPkg.ConversationTurn{Role: "assistant", Content: reply},
	)
	return nil
}

type fakeWhatsapp struct {
	mu        sync.Mutex
	connected bool
	sent      []string
	sendErr   error
}

func (f *fakeWhatsapp) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	f.sent = append(f.sent, phoneNumber+": "+message)
	f.mu.Unlock()
	return nil
}

func (f *fakeWhatsapp) Disconnect() error { return nil }

func (f *fakeWhatsapp) IsConnected() bool { return f.connected }

type fakeExchangeStore struct {
	mu        sync.Mutex
	exchanges []entity.Exchange
	createErr error
}

func (f *fakeExchangeStore) CreateExchange(c context.Context, exchange entity.Exchange) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.exchanges = append(f.exchanges, exchange)
	f.mu.Unlock()
	return nil
}

func (f *fakeExchangeStore) GetExchangeByID(c context.Context, id string) (entity.Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, exchange := range f.exchanges {
		if exchange.ID == id {
			return exchange, nil
		}
	}
	return entity.Exchange{}, assistant.ErrExchangeNotFound
}

func (f *fakeExchangeStore) GetExchangesByUserID(c context.Context, userID string, limit int) ([]entity.Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.Exchange
	for _, exchange := range f.exchanges {
		if exchange.UserID == userID {
			result = append(result, exchange)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeExchangeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.exchanges)
}

type fakeRepository struct {
	store *fakeExchangeStore
}

func (f *fakeRepository) NewClient(tx bool) (assistantRepository.Client, error) {
	return assistantRepository.Client{
		Exchange: f.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

// testDeps bundles every fake so a test can tweak only what it cares about.
type testDeps struct {
	openAI   *fakeOpenAI
	gemini   *fakeGemini
	gmail    *fakeGmail
	calendar *fakeCalendar
	contacts *fakeContacts
	places   *fakePlaces
	whatsapp *fakeWhatsapp
	cache    *fakeRedis
	s3       *fakeS3
	store    *fakeExchangeStore
}

func newTestDeps() *testDeps {
	return &testDeps{
		openAI:   &fakeOpenAI{},
		gemini:   &fakeGemini{reply: "odpowiedź z wyszukiwania"},
		gmail:    &fakeGmail{},
		calendar: &fakeCalendar{},
		contacts: &fakeContacts{},
		places:   &fakePlaces{},
		whatsapp: &fakeWhatsapp{connected: true},
		cache:    &fakeRedis{},
		s3:       &fakeS3{},
		store:    &fakeExchangeStore{},
	}
}

func newServiceForTest(d *testDeps) *assistantService {
	return &assistantService{
		log:        testLogger(),
		repo:       &fakeRepository{store: d.store},
		s3Client:   d.s3,
		utils:      utils.New(),
		openAI:     d.openAI,
		gemini:     d.gemini,
		gmail:      d.gmail,
		calendar:   d.calendar,
		contacts:   d.contacts,
		places:     d.places,
		whatsapp:   d.whatsapp,
		cache:      d.cache,
		classifier: nlp.NewClassifier(),
		config:     DefaultConfig(),
	}
}
