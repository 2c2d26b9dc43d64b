package assistant

import (
	"mime/multipart"
	"time"

	"golang.org/x/oauth2"
)

// ProcessingStatus is the transient phase reported while a voice query is
// being processed. StatusNone is emitted once the reply is ready.
type ProcessingStatus string

const (
	StatusNone              ProcessingStatus = "none"
	StatusTranscribing      ProcessingStatus = "transcribing"
	StatusClassifying       ProcessingStatus = "classifying"
	StatusCheckingEmail     ProcessingStatus = "checking_email"
	StatusCheckingCalendar  ProcessingStatus = "checking_calendar"
	StatusCheckingContacts  ProcessingStatus = "checking_contacts"
	StatusWebSearching      ProcessingStatus = "web_searching"
	StatusPreparingResponse ProcessingStatus = "preparing_response"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IntentClassification is the seven-flag result of classifying a transcript.
// It is created once per run and never mutated afterwards.
type IntentClassification struct {
	NeedsEmail        bool       `json:"needs_email"`
	NeedsCalendar     bool       `json:"needs_calendar"`
	NeedsSms          bool       `json:"needs_sms"`
	NeedsContacts     bool       `json:"needs_contacts"`
	IsSimpleGreeting  bool       `json:"is_simple_greeting"`
	NeedsWebSearch    bool       `json:"needs_web_search"`
	NeedsPlacesSearch bool       `json:"needs_places_search"`
	Confidence        Confidence `json:"confidence"`
}

// IsFastPath reports whether the greeting shortcut applies: a confident
// greeting carries no information need, so context aggregation and intent
// extraction are skipped entirely.
func (c IntentClassification) IsFastPath() bool {
	return c.IsSimpleGreeting && c.Confidence == ConfidenceHigh
}

// ContextFragment is one provider's contribution to the response prompt.
// Available=false means "do not mention this source to the model"; it is a
// normal outcome, not an error.
type ContextFragment struct {
	Source    string `json:"source"`
	Text      string `json:"text,omitempty"`
	Available bool   `json:"available"`
}

// GmailQueryResult is the outcome of translating a transcript into a Gmail
// search query. The query itself never encodes a sender filter; a mentioned
// person is reported through HasSender/SenderHint instead.
type GmailQueryResult struct {
	Query              string `json:"query"`
	QueryWithoutSender string `json:"query_without_sender"`
	HasSender          bool   `json:"has_sender"`
	SenderHint         string `json:"sender_hint"`
}

type EmailIntent struct {
	ShouldSendEmail bool   `json:"should_send_email"`
	To              string `json:"to"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
}

type CalendarIntent struct {
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type SmsIntent struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// VoiceProcessResult is the sole output of a pipeline run. Intent fields are
// nil when no actionable intent was detected.
type VoiceProcessResult struct {
	Transcript     string          `json:"transcript"`
	Reply          string          `json:"reply"`
	EmailIntent    *EmailIntent    `json:"email_intent,omitempty"`
	CalendarIntent *CalendarIntent `json:"calendar_intent,omitempty"`
	SmsIntent      *SmsIntent      `json:"sms_intent,omitempty"`
}

// Session is the authenticated-session handle handed to the orchestrator for
// a single run. A nil GoogleToken fails closed: mail, calendar and contacts
// report "not connected" without any provider call.
type Session struct {
	UserID      string
	UserName    string
	GoogleToken *oauth2.Token
}

// VoiceOptions carries the caller-supplied context and the progress
// callbacks. Both callbacks are optional.
type VoiceOptions struct {
	Language  string
	Context   string
	Location  string
	Latitude  *float64
	Longitude *float64

	OnTranscript   func(text string)
	OnStatusChange func(status ProcessingStatus)
}

type ProcessVoiceRequest struct {
	AudioFile *multipart.FileHeader `json:"audio_file" validate:"required"`
	Language  string                `json:"language,omitempty"`
	Context   string                `json:"context,omitempty"`
	Location  string                `json:"location,omitempty"`
	Latitude  *float64              `json:"latitude,omitempty"`
	Longitude *float64              `json:"longitude,omitempty"`
}

type ExchangeHistory struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AudioFile  string    `json:"audio_file"`
	Transcript string    `json:"transcript"`
	Reply      string    `json:"reply"`
	Intents    string    `json:"intents,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendSmsRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Text        string `json:"text" validate:"required,min=1,max=1000"`
}

func (s Session) HasGoogleToken() bool {
	return s.GoogleToken != nil && s.GoogleToken.AccessToken != ""
}
