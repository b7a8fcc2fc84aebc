package model

import "time"

// ContextItem is a read-only projection of a completed job used as
// conversation history. It is rebuilt on every optimization call.
type ContextItem struct {
	Kind      JobKind
	CreatedAt time.Time

	UserText string
	AIText   string

	FileName     string
	FileType     string
	FileSize     int64
	AnalysisText string
}

// Text is the text the optimizer scores and measures.
func (c ContextItem) Text() string {
	if c.Kind == JobKindFile {
		return c.FileName + " " + c.AnalysisText
	}
	return c.UserText + " " + c.AIText
}

// Len is the character length counted against the context budget.
func (c ContextItem) Len() int {
	if c.Kind == JobKindFile {
		return runeLen(c.FileName) + runeLen(c.AnalysisText)
	}
	return runeLen(c.UserText) + runeLen(c.AIText)
}

type UserProfile struct {
	Name        string   `json:"name,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
	Dislikes    []string `json:"dislikes,omitempty"`
}

func (p UserProfile) IsEmpty() bool {
	return p.Name == "" && len(p.Preferences) == 0 && len(p.Dislikes) == 0
}

// OptimizedContext is the bounded, scored window handed to providers.
type OptimizedContext struct {
	Selected    []ContextItem
	Profile     UserProfile
	Summary     string
	TotalLength int
	Trimmed     bool
}

func runeLen(s string) int {
	return len([]rune(s))
}
