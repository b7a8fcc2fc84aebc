package adapter

import (
	"context"
	"io"
)

// FileStorage keeps uploaded bytes until the owning job no longer needs them.
type FileStorage interface {
	// Save persists r and returns an opaque reference plus the bytes written.
	Save(ctx context.Context, originalName string, r io.Reader) (ref string, size int64, err error)
	// Release frees the stored file. Unknown refs are not an error.
	Release(ctx context.Context, ref string) error
}
