// Package contextopt turns conversation history into a bounded context
// window and derives a lightweight user profile from it.
package contextopt

import (
	"sort"
	"strconv"
	"strings"

	"ai-chat-assistant/internal/domain/model"
)

const (
	weightRecency  = 0.4
	weightLength   = 0.2
	weightKeywords = 0.3
	weightIntent   = 0.1

	lengthNorm   = 200.0
	keywordNorm  = 3.0
	recentKeep   = 3
	topScored    = 5
	maxTopics    = 3
	emptySummary = "Starting new conversation"
	summarySep   = " | "
)

type Config struct {
	MaxContextLength int // characters
	MaxMessages      int
}

func DefaultConfig() Config {
	return Config{MaxContextLength: 4000, MaxMessages: 20}
}

type Optimizer struct {
	cfg Config
}

func New(cfg Config) *Optimizer {
	def := DefaultConfig()
	if cfg.MaxContextLength <= 0 {
		cfg.MaxContextLength = def.MaxContextLength
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = def.MaxMessages
	}
	return &Optimizer{cfg: cfg}
}

func (o *Optimizer) Config() Config { return o.cfg }

// Optimize selects a bounded window from items (oldest first). The length of
// currentMessage is reserved out of the character budget.
func (o *Optimizer) Optimize(items []model.ContextItem, currentMessage string) model.OptimizedContext {
	if len(items) == 0 {
		return model.OptimizedContext{Summary: emptySummary}
	}

	selected := o.selectIndices(items)
	selected = o.trimToBudget(items, selected, len([]rune(currentMessage)))
	if len(selected) > o.cfg.MaxMessages {
		selected = selected[len(selected)-o.cfg.MaxMessages:]
	}

	out := model.OptimizedContext{Selected: make([]model.ContextItem, 0, len(selected))}
	for _, idx := range selected {
		out.Selected = append(out.Selected, items[idx])
		out.TotalLength += items[idx].Len()
	}
	out.Profile = ExtractProfile(items)
	out.Summary = Summarize(items, out.Profile)
	out.Trimmed = len(out.Selected) < len(items)
	return out
}

// selectIndices returns the union of the last three indices and the five
// best-scoring indices overall, in time order. A recent item that scores in
// the top five takes one of the five slots.
func (o *Optimizer) selectIndices(items []model.ContextItem) []int {
	n := len(items)
	recentFrom := n - recentKeep
	if recentFrom < 0 {
		recentFrom = 0
	}

	ranked := make([]int, n)
	scores := make([]float64, n)
	for i := range items {
		ranked[i] = i
		scores[i] = Score(items[i], i, n)
	}
	sort.SliceStable(ranked, func(a, b int) bool { return scores[ranked[a]] > scores[ranked[b]] })
	if len(ranked) > topScored {
		ranked = ranked[:topScored]
	}

	picked := make([]int, 0, topScored+recentKeep)
	for _, i := range ranked {
		if i < recentFrom {
			picked = append(picked, i)
		}
	}
	for i := recentFrom; i < n; i++ {
		picked = append(picked, i)
	}
	sort.Ints(picked)
	return picked
}

// trimToBudget leaves idx alone when it fits MaxContextLength. Otherwise it
// drops the oldest selected items until the rest fits what is left after
// reserving the current message.
func (o *Optimizer) trimToBudget(items []model.ContextItem, idx []int, reserved int) []int {
	total := 0
	for _, i := range idx {
		total += items[i].Len()
	}
	if total <= o.cfg.MaxContextLength {
		return idx
	}
	budget := max(o.cfg.MaxContextLength-reserved, 0)
	for len(idx) > 0 && total > budget {
		total -= items[idx[0]].Len()
		idx = idx[1:]
	}
	return idx
}

// Score weighs recency, length, keyword density and intent for the item at
// position idx of n.
func Score(item model.ContextItem, idx, n int) float64 {
	if n <= 0 {
		return 0
	}
	text := strings.ToLower(item.Text())

	recency := float64(n-idx) / float64(n)
	length := min(float64(len([]rune(text)))/lengthNorm, 1.0)
	keywords := min(float64(KeywordCount(text))/keywordNorm, 1.0)
	intent := 0.0
	if MatchesIntent(text) {
		intent = 1.0
	}
	return weightRecency*recency + weightLength*length + weightKeywords*keywords + weightIntent*intent
}

// Summarize builds "User: X | Messages: N | Recent topics: a, b".
func Summarize(items []model.ContextItem, profile model.UserProfile) string {
	if len(items) == 0 {
		return emptySummary
	}
	parts := make([]string, 0, 3)
	if profile.Name != "" {
		parts = append(parts, "User: "+profile.Name)
	}
	parts = append(parts, "Messages: "+strconv.Itoa(len(items)))

	from := len(items) - recentKeep
	if from < 0 {
		from = 0
	}
	var recent []string
	for _, it := range items[from:] {
		recent = append(recent, userSide(it))
	}
	if topics := Topics(strings.ToLower(strings.Join(recent, " ")), maxTopics); len(topics) > 0 {
		parts = append(parts, "Recent topics: "+strings.Join(topics, ", "))
	}
	return strings.Join(parts, summarySep)
}

// userSide is what the user contributed to a turn.
func userSide(it model.ContextItem) string {
	if it.Kind == model.JobKindFile {
		return it.FileName
	}
	return it.UserText
}
