package nlp

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Classification is the heuristic intent-flag set computed from a transcript.
type Classification struct {
	NeedsEmail        bool
	NeedsCalendar     bool
	NeedsSms          bool
	NeedsContacts     bool
	IsSimpleGreeting  bool
	NeedsWebSearch    bool
	NeedsPlacesSearch bool
	Confidence        string
}
