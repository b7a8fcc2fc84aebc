package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/repository"
)

// Sweeper removes stored uploads older than cutoff that keep does not claim.
type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time, keep func(ref string) bool) (int, error)
}

// UploadJanitor deletes uploads no live job refers to, such as files left
// behind by a previous process.
type UploadJanitor struct {
	jobs      repository.JobRepository
	files     Sweeper
	retention time.Duration
	log       *zerolog.Logger
	now       func() time.Time
}

func NewUploadJanitor(jobs repository.JobRepository, files Sweeper, retention time.Duration, logger *zerolog.Logger) *UploadJanitor {
	return &UploadJanitor{jobs: jobs, files: files, retention: retention, log: logger, now: time.Now}
}

func (j *UploadJanitor) Run(ctx context.Context) (int, error) {
	jobs, err := j.jobs.List(ctx, repository.OrderAsc)
	if err != nil {
		return 0, err
	}
	held := make(map[string]struct{})
	for _, job := range jobs {
		if job.Kind == model.JobKindFile && job.File != nil && !job.IsTerminal() {
			held[job.File.StoredRef] = struct{}{}
		}
	}
	n, err := j.files.Sweep(ctx, j.now().Add(-j.retention), func(ref string) bool {
		_, ok := held[ref]
		return ok
	})
	if n > 0 {
		j.log.Info().Int("removed", n).Msg("orphaned uploads removed")
	}
	return n, err
}
