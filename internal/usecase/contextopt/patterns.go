package contextopt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"ai-chat-assistant/internal/domain/model"
)

// ImportantKeywords boost an item's score and double as summary topics.
var ImportantKeywords = []string{
	"important", "remember", "note", "key", "critical",
	"name", "email", "phone", "address", "password",
	"error", "problem", "issue", "help", "urgent",
}

var (
	intentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bmy name is (\w+)`),
		regexp.MustCompile(`\bi am (\w+)`),
		regexp.MustCompile(`\bcall me (\w+)`),
		regexp.MustCompile(`\bremember that i\b`),
		regexp.MustCompile(`\bdon't forget\b`),
		regexp.MustCompile(`\bkeep in mind\b`),
	}

	// name declarations, tried in order; the first three intents double as these
	namePatterns = intentPatterns[:3]

	preferenceRe = regexp.MustCompile(`\bi (?:like|love) ([^.!?]+)`)
	dislikeRe    = regexp.MustCompile(`\bi (?:hate|don't like) ([^.!?]+)`)

	apostrophes = strings.NewReplacer("’", "'", "‘", "'")
)

// KeywordCount counts distinct important keywords contained in lower-cased text.
func KeywordCount(text string) int {
	n := 0
	for _, k := range ImportantKeywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// Topics returns up to limit keywords found in text, in keyword order.
func Topics(text string, limit int) []string {
	var out []string
	for _, k := range ImportantKeywords {
		if len(out) == limit {
			break
		}
		if strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}

// MatchesIntent reports whether lower-cased text declares something the user
// wants remembered.
func MatchesIntent(text string) bool {
	text = apostrophes.Replace(text)
	for _, re := range intentPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractProfile scans the user side of every item. The earliest name
// declaration wins; preferences and dislikes accumulate in order.
func ExtractProfile(items []model.ContextItem) model.UserProfile {
	var p model.UserProfile
	for _, it := range items {
		if it.Kind != model.JobKindMessage {
			continue
		}
		text := apostrophes.Replace(strings.ToLower(it.UserText))
		if p.Name == "" {
			p.Name = extractName(text)
		}
		if m := preferenceRe.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				p.Preferences = append(p.Preferences, v)
			}
		}
		if m := dislikeRe.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				p.Dislikes = append(p.Dislikes, v)
			}
		}
	}
	return p
}

func extractName(text string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return titleCase(m[1])
		}
	}
	return ""
}

func titleCase(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}
