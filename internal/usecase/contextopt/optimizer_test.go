package contextopt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-assistant/internal/domain/model"
)

func msg(user, ai string) model.ContextItem {
	return model.ContextItem{Kind: model.JobKindMessage, UserText: user, AIText: ai}
}

func history(n int, size int) []model.ContextItem {
	base := time.Now()
	out := make([]model.ContextItem, n)
	for i := range out {
		out[i] = msg(fmt.Sprintf("u%03d %s", i, strings.Repeat("x", size)), "ok")
		out[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
	}
	return out
}

func TestOptimize_Empty(t *testing.T) {
	t.Parallel()
	got := New(DefaultConfig()).Optimize(nil, "hello")
	assert.Empty(t, got.Selected)
	assert.True(t, got.Profile.IsEmpty())
	assert.Equal(t, "Starting new conversation", got.Summary)
	assert.False(t, got.Trimmed)
	assert.Zero(t, got.TotalLength)
}

func TestOptimize_SmallHistoryKeptWhole(t *testing.T) {
	t.Parallel()
	items := history(3, 10)
	got := New(DefaultConfig()).Optimize(items, "")
	require.Len(t, got.Selected, 3)
	assert.Equal(t, items, got.Selected)
	assert.False(t, got.Trimmed)
}

func TestOptimize_SelectsLastThreePlusTopFive(t *testing.T) {
	t.Parallel()
	items := history(12, 5)
	// make one old item stand out
	at := items[1].CreatedAt
	items[1] = msg("this is important, remember my email and phone please", "noted")
	items[1].CreatedAt = at

	got := New(DefaultConfig()).Optimize(items, "")
	require.Len(t, got.Selected, 8)
	assert.True(t, got.Trimmed)

	// last three always present, in order
	assert.Equal(t, items[9:], got.Selected[5:])
	assert.Contains(t, got.Selected, items[1])

	// time order preserved
	for i := 1; i < len(got.Selected); i++ {
		assert.False(t, got.Selected[i].CreatedAt.Before(got.Selected[i-1].CreatedAt), "selection out of order at %d", i)
	}
}

func TestOptimize_RecentItemCanTakeATopSlot(t *testing.T) {
	t.Parallel()
	items := history(10, 5)
	at := items[9].CreatedAt
	items[9] = msg("my name is Bob, remember my email and phone, this is important", "noted")
	items[9].CreatedAt = at
	require.Greater(t, Score(items[9], 9, 10), Score(items[0], 0, 10))

	got := New(DefaultConfig()).Optimize(items, "")
	// top five overall is {9, 0, 1, 2, 3}; union with {7, 8, 9}
	require.Len(t, got.Selected, 7)
	assert.Equal(t, items[:4], got.Selected[:4])
	assert.Equal(t, items[7:], got.Selected[4:])
}

func TestOptimize_RespectsBounds(t *testing.T) {
	t.Parallel()
	cfg := Config{MaxContextLength: 300, MaxMessages: 4}
	opt := New(cfg)
	for _, n := range []int{1, 2, 5, 9, 40} {
		for _, size := range []int{0, 20, 90, 400} {
			items := history(n, size)
			got := opt.Optimize(items, "")
			assert.LessOrEqual(t, len(got.Selected), cfg.MaxMessages, "n=%d size=%d", n, size)
			assert.LessOrEqual(t, len(got.Selected), n)
			assert.LessOrEqual(t, got.TotalLength, cfg.MaxContextLength, "n=%d size=%d", n, size)
			assert.Equal(t, len(got.Selected) < n, got.Trimmed)
		}
	}
}

func TestOptimize_LastThreeSurviveWhenTheyFit(t *testing.T) {
	t.Parallel()
	items := history(30, 100)
	got := New(Config{MaxContextLength: 4000, MaxMessages: 20}).Optimize(items, "")
	require.GreaterOrEqual(t, len(got.Selected), 3)
	assert.Equal(t, items[27:], got.Selected[len(got.Selected)-3:])
}

func TestOptimize_TrimDropsOldestFirst(t *testing.T) {
	t.Parallel()
	items := history(5, 95) // ~102 chars each
	got := New(Config{MaxContextLength: 250, MaxMessages: 20}).Optimize(items, "")
	require.Len(t, got.Selected, 2)
	assert.Equal(t, items[3:], got.Selected)
}

func TestOptimize_ReservesCurrentMessage(t *testing.T) {
	t.Parallel()
	items := history(3, 50) // 57 chars each, 171 total
	opt := New(Config{MaxContextLength: 150, MaxMessages: 20})
	without := opt.Optimize(items, "")
	with := opt.Optimize(items, strings.Repeat("q", 60))
	assert.Len(t, without.Selected, 2)
	assert.Len(t, with.Selected, 1)
	assert.Equal(t, items[2:], with.Selected)
}

func TestOptimize_NoTrimWhenSelectionFits(t *testing.T) {
	t.Parallel()
	items := history(3, 40) // 47 chars each, 141 total
	got := New(Config{MaxContextLength: 150, MaxMessages: 20}).Optimize(items, strings.Repeat("q", 60))
	assert.Equal(t, items, got.Selected)
	assert.Equal(t, 141, got.TotalLength)
	assert.False(t, got.Trimmed)
}

func TestOptimize_AliceProfileAndSummary(t *testing.T) {
	t.Parallel()
	items := []model.ContextItem{
		msg("Hi, my name is Alice and I love machine learning", "Nice to meet you, Alice!"),
		msg("I don't like long meetings. It is an issue.", "Understood."),
	}
	got := New(DefaultConfig()).Optimize(items, "What do you know about my interests?")

	assert.Equal(t, "Alice", got.Profile.Name)
	assert.Equal(t, []string{"machine learning"}, got.Profile.Preferences)
	assert.Equal(t, []string{"long meetings"}, got.Profile.Dislikes)
	assert.Equal(t, "User: Alice | Messages: 2 | Recent topics: name, issue", got.Summary)
}

func TestExtractProfile_FirstNameWins(t *testing.T) {
	t.Parallel()
	p := ExtractProfile([]model.ContextItem{
		msg("call me bob", ""),
		msg("my name is alice", ""),
		{Kind: model.JobKindFile, FileName: "i am file.txt"},
	})
	assert.Equal(t, "Bob", p.Name)
}

func TestExtractProfile_CurlyApostrophe(t *testing.T) {
	t.Parallel()
	p := ExtractProfile([]model.ContextItem{msg("I don’t like spam!", "")})
	assert.Equal(t, []string{"spam"}, p.Dislikes)
	assert.Empty(t, p.Preferences)
}

func TestScore_Components(t *testing.T) {
	t.Parallel()
	plain := msg("ok", "")
	rich := msg("remember that i need help with an urgent error, "+strings.Repeat("z", 200), "")

	assert.InDelta(t, 0.4+0.2*3.0/200, Score(plain, 0, 1), 1e-9)
	assert.InDelta(t, 1.0, Score(rich, 0, 1), 1e-9)
	assert.Greater(t, Score(plain, 0, 10), Score(plain, 9, 10))
}

func TestSummarize_TopicsLimitedToThree(t *testing.T) {
	t.Parallel()
	items := []model.ContextItem{msg("old urgent", ""), msg("a", ""), msg("note the key", ""), msg("important email problem", "")}
	assert.Equal(t, "Messages: 4 | Recent topics: important, note, key", Summarize(items, model.UserProfile{}))
}

func FuzzExtractProfile(f *testing.F) {
	f.Add("my name is alice and i love go. i hate bugs!")
	f.Add("i am")
	f.Add("")
	f.Fuzz(func(t *testing.T, s string) {
		p := ExtractProfile([]model.ContextItem{msg(s, "")})
		if p.Name != "" && strings.ContainsAny(p.Name, " \t\n") {
			t.Fatalf("name must be a single word, got %q", p.Name)
		}
		_ = Summarize([]model.ContextItem{msg(s, "")}, p)
	})
}
