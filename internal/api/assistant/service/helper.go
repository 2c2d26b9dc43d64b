package assistantService

import (
	"AsystentGolang/internal/api/assistant"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// decodeModelJSON parses a structured-extraction payload. Models sometimes
// wrap JSON in markdown fences even in JSON mode, so fences are stripped
// before decoding. Any failure leaves the zero value for the caller's
// default-and-continue handling.
func decodeModelJSON[T any](raw string) (T, error) {
	var out T

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return out, fmt.Errorf("empty model payload")
	}

	if err := json.UnmarshalFromString(cleaned, &out); err != nil {
		return out, fmt.Errorf("model payload decode: %w", err)
	}

	return out, nil
}

// errText formats a probe failure for logging when the error may be nil.
func errText(err error) string {
	if err == nil {
		return "status not ok"
	}
	return err.Error()
}

func emitStatus(opts assistant.VoiceOptions, status assistant.ProcessingStatus) {
	if opts.OnStatusChange != nil {
		opts.OnStatusChange(status)
	}
}

func emitTranscript(opts assistant.VoiceOptions, text string) {
	if opts.OnTranscript != nil {
		opts.OnTranscript(text)
	}
}

// relativeDateHints resolves the date words a transcript may contain into
// concrete after:/before: values for Gmail search operators.
func relativeDateHints(now time.Time) string {
	const layout = "2006/01/02"

	today := now.Format(layout)
	yesterday := now.AddDate(0, 0, -1).Format(layout)
	weekAgo := now.AddDate(0, 0, -7).Format(layout)
	monthAgo := now.AddDate(0, -1, 0).Format(layout)
	tomorrow := now.AddDate(0, 0, 1).Format(layout)

	return fmt.Sprintf(
		"Dzisiaj jest %s.\n"+
			"dzisiaj -> after:%s\n"+
			"wczoraj -> after:%s before:%s\n"+
			"w tym tygodniu / ostatni tydzien -> after:%s\n"+
			"w tym miesiacu / ostatni miesiac -> after:%s\n"+
			"jutro (dla zakresow przyszlych) -> before:%s",
		today, today, yesterday, today, weekAgo, monthAgo, tomorrow,
	)
}
