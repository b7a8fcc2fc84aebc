package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Runner is one periodic unit of work. It reports how many items it handled.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

// Scheduler periodically calls a Runner.
type Scheduler struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	runner   Runner
	log      *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler runs runner every interval, each run bounded by timeout.
// If interval <= 0 it defaults to 1 minute.
func NewScheduler(name string, interval, timeout time.Duration, runner Runner, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		timeout:  timeout,
		runner:   runner,
		log:      logger,
		done:     make(chan struct{}),
	}
}

// Start begins the loop in a background goroutine. Calling Start again has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Str("task", s.name).Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce executes the runner immediately with the configured timeout.
func (s *Scheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.runner.Run(runCtx)
	if err != nil {
		s.log.Error().Err(err).Str("task", s.name).Msg("scheduled run failed")
		return
	}
	if n > 0 {
		s.log.Debug().Str("task", s.name).Int("handled", n).Msg("scheduled run finished")
	}
}

// Stop cancels the loop and waits for it to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	s.log.Info().Str("task", s.name).Msg("scheduler stopped")
}
