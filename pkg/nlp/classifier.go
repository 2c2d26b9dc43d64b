package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Classifier is the local heuristic pass: pure keyword/pattern matching on
// the Polish transcript, no network calls. Keyword tables are kept in
// diacritic-free form and matched against the normalized transcript, so
// "wyślij" and "wyslij" hit the same rule.
type Classifier struct {
	greetingPatterns []*regexp.Regexp
	actionKeywords   []string
	emailKeywords    []string
	calendarKeywords []string
	smsKeywords      []string
	contactKeywords  []string
	webKeywords      []string
	placesKeywords   []string
}

func NewClassifier() *Classifier {
	greetings := []string{
		`^(czesc|hej|hejka|siema|siemka|witaj|witam|halo|hello|hi|hey)$`,
		`^(dzien dobry|dobry wieczor|milego dnia)$`,
		`^(czesc|hej|halo|witaj) (asystencie|asystentko)$`,
		`^jak sie masz$`,
		`^co slychac$`,
	}

	var patterns []*regexp.Regexp
	for _, g := range greetings {
		patterns = append(patterns, regexp.MustCompile(g))
	}

	return &Classifier{
		greetingPatterns: patterns,
		actionKeywords: []string{
			"wyslij", "napisz", "dodaj", "utworz", "umow", "zapisz",
			"wyszukaj", "szukaj", "sprawdz", "pokaz", "przeczytaj",
			"pogoda", "ile kosztuje", "gdzie", "numer", "zadzwon",
		},
		emailKeywords: []string{
			"mail", "maile", "maila", "email", "e mail", "wiadomosci email",
			"skrzynk", "poczt", "gmail",
		},
		calendarKeywords: []string{
			"kalendarz", "spotkani", "wydarzeni", "termin", "wizyt",
			"harmonogram", "plan dnia", "plan tygodnia",
		},
		smsKeywords: []string{
			"sms", "esemes", "smsa", "wiadomosc tekstow",
		},
		contactKeywords: []string{
			"kontakt", "numer", "telefon", "zadzwon", "ksiazka adresowa",
		},
		webKeywords: []string{
			"pogoda", "kurs", "cena", "ile kosztuje", "wyszukaj",
			"internecie", "internetu", "aktualnosci", "newsy", "notowania",
		},
		placesKeywords: []string{
			"gdzie", "w poblizu", "najblizsz", "niedaleko", "restauracj",
			"apteka", "apteki", "sklep", "stacja", "bankomat", "kawiarni",
		},
	}
}

// Classify computes all seven flags from substring and regex rules. The
// greeting patterns only apply when no action keyword is present, so "wyślij
// mail... cześć" never takes the fast path.
func (c *Classifier) Classify(transcript string) Classification {
	text := Normalize(transcript)

	result := Classification{
		NeedsEmail:        containsAny(text, c.emailKeywords),
		NeedsCalendar:     containsAny(text, c.calendarKeywords),
		NeedsSms:          containsAny(text, c.smsKeywords),
		NeedsContacts:     containsAny(text, c.contactKeywords),
		NeedsWebSearch:    containsAny(text, c.webKeywords),
		NeedsPlacesSearch: containsAny(text, c.placesKeywords),
	}

	hasAction := containsAny(text, c.actionKeywords)
	if !hasAction {
		for _, pattern := range c.greetingPatterns {
			if pattern.MatchString(text) {
				result.IsSimpleGreeting = true
				break
			}
		}
	}

	switch {
	case result.IsSimpleGreeting:
		result.Confidence = ConfidenceHigh
	case result.NeedsEmail || result.NeedsCalendar || result.NeedsSms ||
		result.NeedsContacts || result.NeedsWebSearch || result.NeedsPlacesSearch:
		result.Confidence = ConfidenceMedium
	default:
		result.Confidence = ConfidenceLow
	}

	return result
}

// Normalize lowercases the text, strips diacritics and punctuation and
// collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, text)

	// Polish ł is not a combining form, NFD leaves it alone.
	result = strings.ReplaceAll(result, "ł", "l")

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, result)

	words := strings.Fields(result)
	return strings.Join(words, " ")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
