package ai

import (
	"context"

	"ai-chat-assistant/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.AIServiceAdapter
	sem   chan struct{}
}

// NewLimitedAI bounds the number of in-flight calls to inner.
// Waiting for a slot counts against the caller's deadline.
func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 || inner == nil {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Name() string { return l.inner.Name() }

func (l *limitedAI) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", &adapter.ProviderError{Provider: l.inner.Name(), Kind: adapter.ProviderErrTransport, Err: ctx.Err()}
	}
	defer func() { <-l.sem }()
	return l.inner.Generate(ctx, prompt)
}
