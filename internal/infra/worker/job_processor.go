package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/adapter"
	"ai-chat-assistant/internal/domain/ports/repository"
	portsuc "ai-chat-assistant/internal/domain/ports/usecase"
	"ai-chat-assistant/internal/infra/logging"
	"ai-chat-assistant/internal/infra/metrics"
)

// Compile-time check
var _ portsuc.JobDispatcher = (*JobProcessor)(nil)

type Submitter interface {
	Submit(task Task) error
}

// JobProcessor drives a job from pending to a terminal state on the pool.
type JobProcessor struct {
	pool      Submitter
	jobs      repository.JobRepository
	assistant portsuc.Assistant
	files     adapter.FileStorage
	log       *zerolog.Logger
	now       func() time.Time
}

func NewJobProcessor(
	pool Submitter,
	jobs repository.JobRepository,
	assistant portsuc.Assistant,
	files adapter.FileStorage,
	log *zerolog.Logger,
) *JobProcessor {
	return &JobProcessor{
		pool:      pool,
		jobs:      jobs,
		assistant: assistant,
		files:     files,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (p *JobProcessor) Dispatch(job *model.Job) error {
	id := job.ID
	return p.pool.Submit(func(ctx context.Context) error {
		p.Process(ctx, id)
		return nil
	})
}

// Process runs one job. Jobs deleted before or during processing are
// dropped without error.
func (p *JobProcessor) Process(ctx context.Context, id string) {
	job, err := p.jobs.Update(ctx, id, func(j *model.Job) error { return j.Start() })
	if errors.Is(err, domain.ErrNotFound) {
		p.log.Debug().Str("job_id", id).Msg("job gone before processing")
		metrics.IncJobProcessed("unknown", "discarded")
		return
	}
	if err != nil {
		p.log.Warn().Err(err).Str("job_id", id).Msg("job could not be started")
		return
	}

	kind := string(job.Kind)
	ctx = logging.WithJob(ctx, id, kind)
	log := logging.With(ctx, p.log)
	log.Info().Msg("processing job")
	start := time.Now()

	result, failed := p.execute(ctx, job)

	// The outcome is recorded even if the caller's context is already done.
	commitCtx := context.WithoutCancel(ctx)
	_, err = p.jobs.Update(commitCtx, id, func(j *model.Job) error {
		if failed {
			return j.Fail(result, p.now())
		}
		return j.Complete(result, p.now())
	})

	if job.File != nil {
		if rerr := p.files.Release(commitCtx, job.File.StoredRef); rerr != nil {
			log.Warn().Err(rerr).Msg("failed to release stored file")
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Info().Msg("job deleted while processing, result dropped")
		metrics.IncJobProcessed(kind, "discarded")
		return
	case err != nil:
		log.Error().Err(err).Msg("failed to record job result")
		return
	}

	status := string(model.JobStatusDone)
	if failed {
		status = string(model.JobStatusError)
	}
	metrics.IncJobProcessed(kind, status)
	metrics.ObserveJobDuration(kind, time.Since(start))
	log.Info().Str("status", status).Dur("duration", time.Since(start)).Msg("job finished")
}

func (p *JobProcessor) execute(ctx context.Context, job *model.Job) (result string, failed bool) {
	prefix := "Error processing message: "
	if job.Kind == model.JobKindFile {
		prefix = "Error processing file: "
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.IncWorkerPanic()
			result, failed = fmt.Sprintf("%s%v", prefix, r), true
		}
	}()

	if job.Kind == model.JobKindFile {
		return p.assistant.AnalyzeFile(ctx, *job.File), false
	}

	done, err := p.jobs.ListDone(ctx, job.ID)
	if err != nil {
		return prefix + err.Error(), true
	}
	history := make([]model.ContextItem, 0, len(done))
	for _, d := range done {
		if it, ok := d.ContextItem(); ok {
			history = append(history, it)
		}
	}
	return p.assistant.RespondToMessage(ctx, job.Message, history), false
}
