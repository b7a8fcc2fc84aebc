package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/adapter"
	portsuc "ai-chat-assistant/internal/domain/ports/usecase"
	"ai-chat-assistant/internal/infra/logging"
	"ai-chat-assistant/internal/infra/metrics"
	"ai-chat-assistant/internal/usecase/contextopt"
)

// Compile-time check
var _ portsuc.Assistant = (*assistantUC)(nil)

// ProviderChain runs ordered providers until one answers.
type ProviderChain interface {
	Run(ctx context.Context, build func(adapter.PromptStyle) string) (text, provider string, err error)
}

// CannedResponder answers without any provider.
type CannedResponder interface {
	Reply(text string) string
	AnalyzeFile(name, ext string, size int64) string
}

type AssistantConfig struct {
	UseDummy        bool
	ProcessingDelay time.Duration // files wait one extra second on top
}

type assistantUC struct {
	chain ProviderChain
	dummy CannedResponder
	opt   *contextopt.Optimizer
	cfg   AssistantConfig
	log   *zerolog.Logger
}

func NewAssistantUseCase(chain ProviderChain, dummy CannedResponder, opt *contextopt.Optimizer, cfg AssistantConfig, logger *zerolog.Logger) *assistantUC {
	return &assistantUC{chain: chain, dummy: dummy, opt: opt, cfg: cfg, log: logger}
}

func (a *assistantUC) RespondToMessage(ctx context.Context, text string, history []model.ContextItem) string {
	defer logging.TraceDuration(a.log, "AssistantUC.RespondToMessage")()
	log := logging.With(ctx, a.log)

	uxDelay(ctx, a.cfg.ProcessingDelay)
	if a.cfg.UseDummy {
		metrics.IncAIResponse("message", "dummy")
		return a.dummy.Reply(text)
	}

	oc := a.opt.Optimize(history, text)
	metrics.ObserveContextOptimization(len(oc.Selected), oc.Trimmed)
	log.Info().
		Str("summary", oc.Summary).
		Int("history", len(history)).
		Int("selected", len(oc.Selected)).
		Int("context_chars", oc.TotalLength).
		Bool("trimmed", oc.Trimmed).
		Msg("context optimized")

	out, provider, err := a.chain.Run(ctx, func(style adapter.PromptStyle) string {
		return MessagePrompt(style, text, oc)
	})
	if err != nil {
		log.Error().Err(err).Msg("all providers failed for message, using apology")
		metrics.IncFallbackExhausted()
		metrics.IncAIResponse("message", "fallback")
		return MessageApology
	}
	metrics.IncAIResponse("message", provider)
	log.Info().Str("provider", provider).Msg("message answered")
	return out
}

func (a *assistantUC) AnalyzeFile(ctx context.Context, f model.FilePayload) string {
	defer logging.TraceDuration(a.log, "AssistantUC.AnalyzeFile")()
	log := logging.With(ctx, a.log)

	if a.cfg.ProcessingDelay > 0 {
		uxDelay(ctx, a.cfg.ProcessingDelay+time.Second)
	}
	if a.cfg.UseDummy {
		metrics.IncAIResponse("file", "dummy")
		return a.dummy.AnalyzeFile(f.OriginalName, f.Extension, f.Size)
	}

	out, provider, err := a.chain.Run(ctx, func(style adapter.PromptStyle) string {
		return FilePrompt(style, f)
	})
	if err != nil {
		log.Error().Err(err).Str("file", f.OriginalName).Msg("all providers failed for file, using apology")
		metrics.IncFallbackExhausted()
		metrics.IncAIResponse("file", "fallback")
		return FileApology(f)
	}
	metrics.IncAIResponse("file", provider)
	return "📁 " + out
}

// uxDelay pauses before answering; cancellation cuts it short.
func uxDelay(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
