package usecase

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/repository"
	"ai-chat-assistant/internal/infra/logging"
	"ai-chat-assistant/internal/usecase/contextopt"
)

// Compile-time check
var _ ContextUseCase = (*contextUC)(nil)

const DefaultTestMessage = "What can you tell me about our conversation?"

// TokenCounter estimates how many model tokens a text costs.
type TokenCounter interface {
	Count(text string) int
}

type ConversationStats struct {
	TotalMessages       int     `json:"total_messages"`
	TotalCharacters     int     `json:"total_characters"`
	OptimizedCharacters int     `json:"optimized_characters"`
	CompressionRatio    float64 `json:"compression_ratio_percent"`
	UserQuestions       int     `json:"user_questions"`
	FileUploads         int     `json:"file_uploads"`
	EstimatedTokens     int     `json:"estimated_tokens"`
}

type OptimizationInfo struct {
	Applied          bool   `json:"optimization_applied"`
	Summary          string `json:"context_summary"`
	MessagesInWindow int    `json:"messages_in_context"`
	TotalAvailable   int    `json:"total_messages_available"`
}

type Insights struct {
	QuestionRate        float64 `json:"question_rate"`
	AvgMessageLength    float64 `json:"avg_message_length"`
	FileInteractionRate float64 `json:"file_interaction_rate"`
}

// Analytics describes the current conversation. Stats, Optimization and
// Insights are nil when there is no completed job yet.
type Analytics struct {
	Stats           *ConversationStats `json:"conversation_stats,omitempty"`
	Optimization    *OptimizationInfo  `json:"context_optimization,omitempty"`
	Profile         model.UserProfile  `json:"user_profile"`
	Insights        *Insights          `json:"conversation_insights,omitempty"`
	Recommendations []string           `json:"recommendations"`
}

type WindowStats struct {
	MessageCount int  `json:"message_count"`
	TotalLength  int  `json:"total_length"`
	Applied      bool `json:"optimization_applied,omitempty"`
}

type OptimizePreview struct {
	TestMessage      string            `json:"test_message"`
	Original         WindowStats       `json:"original_context"`
	Optimized        WindowStats       `json:"optimized_context"`
	Profile          model.UserProfile `json:"user_info"`
	Summary          string            `json:"context_summary"`
	CompressionRatio float64           `json:"compression_ratio"`
}

type ContextUseCase interface {
	History(ctx context.Context) ([]*model.Job, error)
	Analytics(ctx context.Context) (*Analytics, error)
	OptimizePreview(ctx context.Context, testMessage string) (*OptimizePreview, error)
}

type contextUC struct {
	jobs   repository.JobRepository
	opt    *contextopt.Optimizer
	tokens TokenCounter
	log    *zerolog.Logger
}

func NewContextUseCase(jobs repository.JobRepository, opt *contextopt.Optimizer, tokens TokenCounter, logger *zerolog.Logger) *contextUC {
	return &contextUC{jobs: jobs, opt: opt, tokens: tokens, log: logger}
}

// History returns every job, oldest first.
func (c *contextUC) History(ctx context.Context) ([]*model.Job, error) {
	return c.jobs.List(ctx, repository.OrderAsc)
}

func (c *contextUC) Analytics(ctx context.Context) (*Analytics, error) {
	defer logging.TraceDuration(c.log, "ContextUC.Analytics")()

	items, err := c.completed(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &Analytics{Recommendations: []string{"Start a conversation to see context analytics"}}, nil
	}

	oc := c.opt.Optimize(items, "")
	total := totalLength(items)
	questions, files := 0, 0
	for _, it := range items {
		if it.Kind == model.JobKindFile {
			files++
		} else if strings.HasSuffix(it.UserText, "?") {
			questions++
		}
	}
	n := float64(len(items))

	return &Analytics{
		Stats: &ConversationStats{
			TotalMessages:       len(items),
			TotalCharacters:     total,
			OptimizedCharacters: oc.TotalLength,
			CompressionRatio:    compression(oc.TotalLength, total),
			UserQuestions:       questions,
			FileUploads:         files,
			EstimatedTokens:     c.countTokens(oc),
		},
		Optimization: &OptimizationInfo{
			Applied:          oc.Trimmed,
			Summary:          oc.Summary,
			MessagesInWindow: len(oc.Selected),
			TotalAvailable:   len(items),
		},
		Profile: oc.Profile,
		Insights: &Insights{
			QuestionRate:        round(float64(questions)/n*100, 1),
			AvgMessageLength:    round(float64(total)/n, 1),
			FileInteractionRate: round(float64(files)/n*100, 1),
		},
		Recommendations: recommend(oc, len(items), questions, files),
	}, nil
}

func (c *contextUC) OptimizePreview(ctx context.Context, testMessage string) (*OptimizePreview, error) {
	if strings.TrimSpace(testMessage) == "" {
		testMessage = DefaultTestMessage
	}
	items, err := c.completed(ctx)
	if err != nil {
		return nil, err
	}
	oc := c.opt.Optimize(items, testMessage)
	total := totalLength(items)

	out := &OptimizePreview{
		TestMessage: testMessage,
		Original:    WindowStats{MessageCount: len(items), TotalLength: total},
		Optimized:   WindowStats{MessageCount: len(oc.Selected), TotalLength: oc.TotalLength, Applied: oc.Trimmed},
		Profile:     oc.Profile,
		Summary:     oc.Summary,
	}
	if len(items) > 0 {
		out.CompressionRatio = compression(oc.TotalLength, total)
	}
	return out, nil
}

func (c *contextUC) completed(ctx context.Context) ([]model.ContextItem, error) {
	jobs, err := c.jobs.ListDone(ctx, "")
	if err != nil {
		return nil, err
	}
	items := make([]model.ContextItem, 0, len(jobs))
	for _, j := range jobs {
		if it, ok := j.ContextItem(); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (c *contextUC) countTokens(oc model.OptimizedContext) int {
	if c.tokens == nil {
		return 0
	}
	var b strings.Builder
	for _, it := range oc.Selected {
		b.WriteString(it.Text())
		b.WriteByte('\n')
	}
	return c.tokens.Count(b.String())
}

func recommend(oc model.OptimizedContext, total, questions, files int) []string {
	var out []string
	if total > 50 {
		out = append(out, "Consider starting a new conversation topic for optimal context management")
	}
	if oc.Profile.IsEmpty() {
		out = append(out, "Try introducing yourself (e.g., 'My name is...') for more personalized responses")
	}
	if oc.Trimmed {
		out = append(out, "Context optimization is active - AI focuses on most relevant conversation parts")
	}
	if files == 0 {
		out = append(out, "Try uploading a file to see AI-powered document analysis")
	}
	if float64(questions) < float64(total)*0.3 {
		out = append(out, "Ask more questions to get the most out of the AI assistant")
	}
	if len(out) == 0 {
		return []string{"Great conversation! Keep chatting for optimal AI interactions"}
	}
	return out
}

func totalLength(items []model.ContextItem) int {
	n := 0
	for _, it := range items {
		n += it.Len()
	}
	return n
}

func compression(optimized, total int) float64 {
	return round((1-float64(optimized)/float64(max(total, 1)))*100, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
