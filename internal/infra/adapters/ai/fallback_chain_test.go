package ai_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/domain/ports/adapter"
	ai "ai-chat-assistant/internal/infra/adapters/ai"
)

type stubAI struct {
	name    string
	mu      sync.Mutex
	calls   int
	prompts []string
	// fail the first failN calls; -1 fails forever
	failN int
	reply string
	block bool
}

func (s *stubAI) Name() string { return s.name }

func (s *stubAI) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	n := s.calls
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return "", &adapter.ProviderError{Provider: s.name, Kind: adapter.ProviderErrTransport, Err: ctx.Err()}
	}
	if s.failN < 0 || n <= s.failN {
		return "", &adapter.ProviderError{Provider: s.name, Kind: adapter.ProviderErrStatus, StatusCode: 503}
	}
	return s.reply, nil
}

func (s *stubAI) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastCfg() ai.ChainConfig {
	return ai.ChainConfig{MaxRetries: 2, CallTimeout: time.Second, RetryDelay: time.Millisecond}
}

func styleBuilder(full, compact string) func(adapter.PromptStyle) string {
	return func(s adapter.PromptStyle) string {
		if s == adapter.PromptCompact {
			return compact
		}
		return full
	}
}

func TestChain_PrimarySucceeds(t *testing.T) {
	t.Parallel()
	a := &stubAI{name: "a", reply: "from-a"}
	b := &stubAI{name: "b", reply: "from-b"}
	c := ai.NewFallbackChain(fastCfg(), nil, ai.Tier{Provider: a}, ai.Tier{Provider: b, Style: adapter.PromptCompact})

	out, prov, err := c.Run(context.Background(), styleBuilder("full", "compact"))
	if err != nil || out != "from-a" || prov != "a" {
		t.Fatalf("got (%q,%q,%v)", out, prov, err)
	}
	if b.Calls() != 0 {
		t.Fatalf("secondary must not be called when primary succeeds")
	}
}

func TestChain_FallsBackAfterExactlyMaxRetries(t *testing.T) {
	t.Parallel()
	a := &stubAI{name: "a", failN: -1}
	b := &stubAI{name: "b", reply: "from-b"}
	c := ai.NewFallbackChain(fastCfg(), nil, ai.Tier{Provider: a}, ai.Tier{Provider: b, Style: adapter.PromptCompact})

	out, prov, err := c.Run(context.Background(), styleBuilder("full", "compact"))
	if err != nil || out != "from-b" || prov != "b" {
		t.Fatalf("got (%q,%q,%v)", out, prov, err)
	}
	if a.Calls() != 2 {
		t.Fatalf("primary should be attempted exactly 2 times, got %d", a.Calls())
	}
	if b.prompts[0] != "compact" || a.prompts[0] != "full" {
		t.Fatalf("tier prompt styles not honoured: a=%v b=%v", a.prompts, b.prompts)
	}
}

func TestChain_RetrySucceedsWithinTier(t *testing.T) {
	t.Parallel()
	a := &stubAI{name: "a", failN: 1, reply: "second try"}
	b := &stubAI{name: "b", reply: "from-b"}
	c := ai.NewFallbackChain(fastCfg(), nil, ai.Tier{Provider: a}, ai.Tier{Provider: b})

	out, _, err := c.Run(context.Background(), styleBuilder("p", "p"))
	if err != nil || out != "second try" {
		t.Fatalf("got (%q,%v)", out, err)
	}
	if a.Calls() != 2 || b.Calls() != 0 {
		t.Fatalf("calls a=%d b=%d", a.Calls(), b.Calls())
	}
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()
	a := &stubAI{name: "a", failN: -1}
	b := &stubAI{name: "b", failN: -1}
	c := ai.NewFallbackChain(fastCfg(), nil, ai.Tier{Provider: a}, ai.Tier{Provider: b, MaxRetries: 3})

	_, _, err := c.Run(context.Background(), styleBuilder("p", "p"))
	if !errors.Is(err, domain.ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	var pe *adapter.ProviderError
	if !errors.As(err, &pe) || pe.Provider != "b" {
		t.Fatalf("expected last provider error to be wrapped, got %v", err)
	}
	if a.Calls() != 2 || b.Calls() != 3 {
		t.Fatalf("calls a=%d b=%d", a.Calls(), b.Calls())
	}
}

func TestChain_SkipsUnconfiguredTiers(t *testing.T) {
	t.Parallel()
	b := &stubAI{name: "b", reply: "ok"}
	c := ai.NewFallbackChain(fastCfg(), nil, ai.Tier{Provider: nil}, ai.Tier{Provider: b})
	if got := c.Providers(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("providers = %v", got)
	}

	empty := ai.NewFallbackChain(fastCfg(), nil)
	if !empty.Empty() {
		t.Fatal("chain without providers should be empty")
	}
	_, _, err := empty.Run(context.Background(), styleBuilder("p", "p"))
	if !errors.Is(err, domain.ErrAllProvidersFailed) || !errors.Is(err, domain.ErrProviderNotReady) {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestChain_PerCallTimeout(t *testing.T) {
	t.Parallel()
	slow := &stubAI{name: "slow", block: true}
	fast := &stubAI{name: "fast", reply: "ok"}
	cfg := ai.ChainConfig{MaxRetries: 1, CallTimeout: 20 * time.Millisecond}
	c := ai.NewFallbackChain(cfg, nil, ai.Tier{Provider: slow}, ai.Tier{Provider: fast})

	start := time.Now()
	out, prov, err := c.Run(context.Background(), styleBuilder("p", "p"))
	if err != nil || out != "ok" || prov != "fast" {
		t.Fatalf("got (%q,%q,%v)", out, prov, err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("per-call timeout not enforced")
	}
}

func TestChain_ParentCancelStops(t *testing.T) {
	t.Parallel()
	a := &stubAI{name: "a", failN: -1}
	b := &stubAI{name: "b", reply: "never"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := ai.NewFallbackChain(fastCfg(), nil, ai.Tier{Provider: a}, ai.Tier{Provider: b})

	_, _, err := c.Run(ctx, styleBuilder("p", "p"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b.Calls() != 0 {
		t.Fatal("no further tiers after cancellation")
	}
}

func TestLimitedAI_RespectsContext(t *testing.T) {
	t.Parallel()
	inner := &stubAI{name: "x", block: true}
	l := ai.NewLimitedAI(inner, 1)
	if l.Name() != "x" {
		t.Fatalf("name = %q", l.Name())
	}

	holdCtx, release := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_, _ = l.Generate(holdCtx, "hold")
		close(done)
	}()
	for inner.Calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Generate(ctx, "second"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline waiting for slot, got %v", err)
	}
	release()
	<-done
	if inner.Calls() != 1 {
		t.Fatalf("second call must not reach provider, calls=%d", inner.Calls())
	}
}
