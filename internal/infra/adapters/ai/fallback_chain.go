// File: internal/infra/adapters/ai/fallback_chain.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/domain/ports/adapter"
	"ai-chat-assistant/internal/infra/metrics"
)

// Tier is one provider in the priority list.
type Tier struct {
	Provider   adapter.AIServiceAdapter
	Style      adapter.PromptStyle
	MaxRetries int // 0 means the chain default
}

type ChainConfig struct {
	MaxRetries  int
	CallTimeout time.Duration
	RetryDelay  time.Duration
}

// FallbackChain tries tiers in order. Each tier gets up to MaxRetries strictly
// sequential attempts; the first success wins.
type FallbackChain struct {
	tiers []Tier
	cfg   ChainConfig
	log   *zerolog.Logger
}

// NewFallbackChain drops tiers without a provider: an unconfigured provider
// is skipped, not counted as a failure.
func NewFallbackChain(cfg ChainConfig, log *zerolog.Logger, tiers ...Tier) *FallbackChain {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	active := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.Provider != nil {
			active = append(active, t)
		}
	}
	return &FallbackChain{tiers: active, cfg: cfg, log: log}
}

// Providers lists configured provider names in priority order.
func (c *FallbackChain) Providers() []string {
	out := make([]string, 0, len(c.tiers))
	for _, t := range c.tiers {
		out = append(out, t.Provider.Name())
	}
	return out
}

func (c *FallbackChain) Empty() bool { return len(c.tiers) == 0 }

// Run builds one prompt per tier with build and returns the first successful
// text plus the provider that produced it. When every tier is exhausted the
// error wraps domain.ErrAllProvidersFailed.
func (c *FallbackChain) Run(ctx context.Context, build func(adapter.PromptStyle) string) (string, string, error) {
	var lastErr error
	for _, t := range c.tiers {
		name := t.Provider.Name()
		prompt := build(t.Style)
		retries := t.MaxRetries
		if retries <= 0 {
			retries = c.cfg.MaxRetries
		}

		for attempt := 1; attempt <= retries; attempt++ {
			out, err := c.call(ctx, t.Provider, prompt)
			if err == nil {
				c.log.Debug().Str("provider", name).Int("attempt", attempt).Msg("provider succeeded")
				return out, name, nil
			}
			lastErr = err
			c.log.Warn().Err(err).Str("provider", name).Int("attempt", attempt).Int("max_attempts", retries).Msg("provider attempt failed")

			if ctx.Err() != nil {
				return "", "", fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, ctx.Err())
			}
			if attempt < retries {
				if err := sleepCtx(ctx, c.cfg.RetryDelay); err != nil {
					return "", "", fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, err)
				}
			}
		}
		c.log.Error().Err(lastErr).Str("provider", name).Msg("provider exhausted, falling back")
	}

	if lastErr == nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, domain.ErrProviderNotReady)
	}
	return "", "", fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, lastErr)
}

func (c *FallbackChain) call(ctx context.Context, p adapter.AIServiceAdapter, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.Generate(callCtx, prompt)
	if err == nil && strings.TrimSpace(out) == "" {
		err = &adapter.ProviderError{Provider: p.Name(), Kind: adapter.ProviderErrMalformed, Err: errors.New("empty response")}
	}
	metrics.ObserveProviderAttempt(p.Name(), outcome(err), time.Since(start))
	if err != nil {
		return "", err
	}
	return out, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
