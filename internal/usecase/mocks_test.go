package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/adapter"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeChain records the prompt it was asked to send.
type fakeChain struct {
	style  adapter.PromptStyle
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeChain) Run(ctx context.Context, build func(adapter.PromptStyle) string) (string, string, error) {
	f.calls++
	f.prompt = build(f.style)
	if f.err != nil {
		return "", "", f.err
	}
	return f.reply, "fake", nil
}

type fakeCanned struct{}

func (fakeCanned) Reply(text string) string { return "canned: " + text }
func (fakeCanned) AnalyzeFile(name, ext string, size int64) string {
	return "canned file: " + name
}

type fakeDispatcher struct {
	mu   sync.Mutex
	err  error
	jobs []*model.Job
}

func (d *fakeDispatcher) Dispatch(job *model.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type memStorage struct {
	mu       sync.Mutex
	saved    map[string][]byte
	released []string
	saveErr  error
	seq      int
}

func newMemStorage() *memStorage {
	return &memStorage{saved: make(map[string][]byte)}
}

func (s *memStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if s.saveErr != nil {
		return "", 0, s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ref := name + "#" + string(rune('0'+s.seq))
	s.saved[ref] = b
	return ref, int64(len(b)), nil
}

func (s *memStorage) Release(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[ref]; !ok {
		return errors.New("unknown ref")
	}
	delete(s.saved, ref)
	s.released = append(s.released, ref)
	return nil
}

// fixedCounter returns the same count for any text.
type fixedCounter struct{ n int }

func (c fixedCounter) Count(string) int { return c.n }
