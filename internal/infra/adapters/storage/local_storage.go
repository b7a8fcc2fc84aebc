package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/domain/ports/adapter"
)

var _ adapter.FileStorage = (*LocalStorage)(nil)

// LocalStorage keeps uploads as uuid-named files in a single directory.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, errors.New("storage: empty upload dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	ref := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, ref))
		return "", 0, fmt.Errorf("storage: write: %w", err)
	}
	return ref, n, nil
}

func (s *LocalStorage) Release(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if ref != filepath.Base(ref) || ref == "." || ref == ".." {
		return fmt.Errorf("%w: bad storage ref %q", domain.ErrInvalidArgument, ref)
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}

// Path resolves a ref to its location on disk.
func (s *LocalStorage) Path(ref string) string {
	return filepath.Join(s.dir, filepath.Base(ref))
}

// Sweep removes stored files last modified before cutoff unless keep reports
// them as still referenced. It returns how many files were removed.
func (s *LocalStorage) Sweep(ctx context.Context, cutoff time.Time, keep func(ref string) bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("storage: list: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.IsDir() || (keep != nil && keep(e.Name())) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("storage: remove: %w", err)
		}
		removed++
	}
	return removed, nil
}
