package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
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
var _ JobUseCase = (*jobUC)(nil)

// FileUpload is an incoming file. Size is the declared size or -1 if unknown.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type JobUseCase interface {
	SubmitMessage(ctx context.Context, text string) (string, error)
	SubmitFile(ctx context.Context, up FileUpload) (string, error)
	ValidateUpload(name string, size int64) error
	Get(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, order repository.Order) ([]*model.Job, error)
	Counts(ctx context.Context) (messages, files int, err error)
	// Delete reports whether a job was removed; unknown ids are not an error.
	Delete(ctx context.Context, id string) (bool, error)
	ClearAll(ctx context.Context) (int, error)
}

type jobUC struct {
	jobs       repository.JobRepository
	files      adapter.FileStorage
	dispatcher portsuc.JobDispatcher
	validator  *UploadValidator
	log        *zerolog.Logger

	newID func() string
	now   func() time.Time
}

func NewJobUseCase(
	jobs repository.JobRepository,
	files adapter.FileStorage,
	dispatcher portsuc.JobDispatcher,
	validator *UploadValidator,
	logger *zerolog.Logger,
) *jobUC {
	return &jobUC{
		jobs:       jobs,
		files:      files,
		dispatcher: dispatcher,
		validator:  validator,
		log:        logger,
		newID:      func() string { return ulid.Make().String() },
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (u *jobUC) SubmitMessage(ctx context.Context, text string) (string, error) {
	defer logging.TraceDuration(u.log, "JobUC.SubmitMessage")()

	job, err := model.NewMessageJob(u.newID(), text, u.now())
	if err != nil {
		return "", err
	}
	if err := u.enqueue(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}

func (u *jobUC) ValidateUpload(name string, size int64) error {
	return u.validator.Validate(name, size)
}

func (u *jobUC) SubmitFile(ctx context.Context, up FileUpload) (string, error) {
	defer logging.TraceDuration(u.log, "JobUC.SubmitFile")()

	if err := u.validator.Validate(up.Filename, up.Size); err != nil {
		return "", err
	}
	if up.Content == nil {
		return "", fmt.Errorf("%w: empty upload body", domain.ErrInvalidArgument)
	}

	max := u.validator.MaxSize()
	body := up.Content
	if max > 0 {
		body = io.LimitReader(up.Content, max+1)
	}
	ref, n, err := u.files.Save(ctx, up.Filename, body)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	if max > 0 && n > max {
		u.release(ctx, ref)
		return "", u.validator.TooLarge(n)
	}

	ext := Extension(up.Filename)
	job, err := model.NewFileJob(u.newID(), model.FilePayload{
		OriginalName: up.Filename,
		StoredRef:    ref,
		Extension:    ext,
		MediaType:    model.MediaType(ext),
		Size:         n,
	}, u.now())
	if err != nil {
		u.release(ctx, ref)
		return "", err
	}
	if err := u.enqueue(ctx, job); err != nil {
		u.release(ctx, ref)
		return "", err
	}
	return job.ID, nil
}

// enqueue stores the job and hands it to the dispatcher. A rejected dispatch
// removes the job again so nothing stays pending forever.
func (u *jobUC) enqueue(ctx context.Context, job *model.Job) error {
	if err := u.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	if err := u.dispatcher.Dispatch(job.Clone()); err != nil {
		_, _ = u.jobs.Delete(ctx, job.ID)
		u.log.Warn().Err(err).Str("job_id", job.ID).Msg("dispatch rejected")
		if errors.Is(err, domain.ErrQueueFull) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrQueueFull, err)
	}
	metrics.IncJobSubmitted(string(job.Kind))
	logging.With(ctx, u.log).Info().Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("job accepted")
	return nil
}

func (u *jobUC) Get(ctx context.Context, id string) (*model.Job, error) {
	return u.jobs.FindByID(ctx, id)
}

func (u *jobUC) List(ctx context.Context, order repository.Order) ([]*model.Job, error) {
	return u.jobs.List(ctx, order)
}

func (u *jobUC) Counts(ctx context.Context) (int, int, error) {
	return u.jobs.Count(ctx)
}

func (u *jobUC) Delete(ctx context.Context, id string) (bool, error) {
	job, err := u.jobs.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if job.File != nil {
		u.release(ctx, job.File.StoredRef)
	}
	logging.With(ctx, u.log).Info().Str("job_id", id).Msg("job deleted")
	return true, nil
}

func (u *jobUC) ClearAll(ctx context.Context) (int, error) {
	removed, err := u.jobs.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, j := range removed {
		if j.File != nil {
			u.release(ctx, j.File.StoredRef)
		}
	}
	logging.With(ctx, u.log).Info().Int("jobs", len(removed)).Msg("all jobs cleared")
	return len(removed), nil
}

// release frees stored bytes; failures are logged and swallowed.
func (u *jobUC) release(ctx context.Context, ref string) {
	if err := u.files.Release(ctx, ref); err != nil {
		u.log.Warn().Err(err).Str("ref", ref).Msg("failed to release stored file")
	}
}
