package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-assistant/internal/domain"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPool_RunsTasksAndDrainsOnStop(t *testing.T) {
	p := NewPool(2, 16, nopLogger())
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	p.Stop()
	assert.Equal(t, int32(10), ran.Load())

	err := p.Submit(func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
	p.Stop() // second stop is a no-op
}

func TestPool_RejectsWhenQueueFull(t *testing.T) {
	p := NewPool(1, 1, nopLogger())
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, p.Submit(noop))
	err := p.Submit(noop)
	assert.True(t, errors.Is(err, domain.ErrQueueFull), "got %v", err)
	assert.Equal(t, 1, p.Pending())
}

func TestPool_SurvivesPanicsAndErrors(t *testing.T) {
	p := NewPool(1, 4, nopLogger())
	p.Start(context.Background())

	done := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) error { panic("boom") }))
	require.NoError(t, p.Submit(func(ctx context.Context) error { return errors.New("failed") }))
	require.NoError(t, p.Submit(func(ctx context.Context) error { close(done); return nil }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
	p.Stop()
}

func TestPool_NilTask(t *testing.T) {
	p := NewPool(1, 1, nopLogger())
	assert.Error(t, p.Submit(nil))
}
