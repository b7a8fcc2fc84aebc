// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/infra/metrics"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Task is a unit of background work. A returned error is only logged.
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed number of goroutines fed by a bounded
// queue. Submit never blocks.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	jobs   chan Task
	n      int
	log    *zerolog.Logger
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	return &Pool{jobs: make(chan Task, queueSize), n: workers, log: logger}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("workers", p.n).Int("queue", cap(p.jobs)).Msg("worker pool started")
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.jobs {
				p.run(ctx, id, task)
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncWorkerPanic()
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Error().Err(err).Int("worker", id).Msg("task error")
	}
}

// Stop stops accepting tasks, lets the workers drain the queue and waits for
// them. Tasks observe cancellation of the context given to Start.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
	p.log.Info().Msg("worker pool stopped")
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		metrics.IncWorkerRejected()
		return fmt.Errorf("%w: worker queue full", domain.ErrQueueFull)
	}
}

// Pending is the number of queued tasks not yet picked up.
func (p *Pool) Pending() int {
	return len(p.jobs)
}
