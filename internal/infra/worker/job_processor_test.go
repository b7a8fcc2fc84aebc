package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/infra/db/memory"
)

type fakeAssistant struct {
	reply   func(ctx context.Context, text string, history []model.ContextItem) string
	history []model.ContextItem
}

func (f *fakeAssistant) RespondToMessage(ctx context.Context, text string, history []model.ContextItem) string {
	f.history = history
	if f.reply != nil {
		return f.reply(ctx, text, history)
	}
	return "echo: " + text
}

func (f *fakeAssistant) AnalyzeFile(ctx context.Context, file model.FilePayload) string {
	return "analysis of " + file.OriginalName
}

type fakeStorage struct {
	mu       sync.Mutex
	released []string
}

func (s *fakeStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	n, err := io.Copy(io.Discard, r)
	return "ref-" + name, n, err
}

func (s *fakeStorage) Release(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, ref)
	return nil
}

// inline runs tasks synchronously on Submit.
type inline struct{}

func (inline) Submit(task Task) error { return task(context.Background()) }

func newProcessor(a *fakeAssistant) (*JobProcessor, *fakeStorage, interface {
	Save(context.Context, *model.Job) error
	FindByID(context.Context, string) (*model.Job, error)
	Delete(context.Context, string) (*model.Job, error)
}) {
	repo := memory.NewJobRepo()
	st := &fakeStorage{}
	return NewJobProcessor(inline{}, repo, a, st, nopLogger()), st, repo
}

func TestJobProcessor_MessageUsesPriorDoneJobs(t *testing.T) {
	ctx := context.Background()
	a := &fakeAssistant{}
	p, _, repo := newProcessor(a)
	now := time.Now()

	first, _ := model.NewMessageJob("01", "my name is Alice", now)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, p.Dispatch(first))

	second, _ := model.NewMessageJob("02", "what's my name?", now.Add(time.Second))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, p.Dispatch(second))

	got, err := repo.FindByID(ctx, "02")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, got.Status)
	assert.Equal(t, "echo: what's my name?", got.Result)
	assert.NotNil(t, got.CompletedAt)

	require.Len(t, a.history, 1)
	assert.Equal(t, "my name is Alice", a.history[0].UserText)
	assert.Equal(t, "echo: my name is Alice", a.history[0].AIText)
}

func TestJobProcessor_FileReleasesStorage(t *testing.T) {
	ctx := context.Background()
	p, st, repo := newProcessor(&fakeAssistant{})

	job, err := model.NewFileJob("f1", model.FilePayload{OriginalName: "a.csv", StoredRef: "ref-a", Extension: ".csv", Size: 3}, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, job))
	require.NoError(t, p.Dispatch(job))

	got, err := repo.FindByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, got.Status)
	assert.Equal(t, "analysis of a.csv", got.Result)
	assert.Equal(t, []string{"ref-a"}, st.released)
}

func TestJobProcessor_PanicBecomesErrorStatus(t *testing.T) {
	ctx := context.Background()
	a := &fakeAssistant{reply: func(context.Context, string, []model.ContextItem) string { panic("kaboom") }}
	p, _, repo := newProcessor(a)

	job, _ := model.NewMessageJob("p1", "hi", time.Now())
	require.NoError(t, repo.Save(ctx, job))
	require.NoError(t, p.Dispatch(job))

	got, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusError, got.Status)
	assert.Equal(t, "Error processing message: kaboom", got.Result)
}

func TestJobProcessor_DeletedWhileProcessing(t *testing.T) {
	ctx := context.Background()
	a := &fakeAssistant{}
	p, _, repo := newProcessor(a)
	a.reply = func(ctx context.Context, text string, _ []model.ContextItem) string {
		_, _ = repo.Delete(ctx, "d1")
		return "late"
	}

	job, _ := model.NewMessageJob("d1", "hi", time.Now())
	require.NoError(t, repo.Save(ctx, job))
	require.NoError(t, p.Dispatch(job))

	_, err := repo.FindByID(ctx, "d1")
	assert.Error(t, err, "deleted job must not be resurrected")
}

func TestJobProcessor_UnknownJobIsDiscarded(t *testing.T) {
	p, _, repo := newProcessor(&fakeAssistant{})
	p.Process(context.Background(), "missing")
	_, err := repo.FindByID(context.Background(), "missing")
	assert.Error(t, err)
}
