package repository

import (
	"context"

	"ai-chat-assistant/internal/domain/model"
)

type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

// JobRepository stores jobs for the lifetime of the process.
// Every returned job is a copy; callers never share memory with the store.
type JobRepository interface {
	Save(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id string) (*model.Job, error)
	// Update applies fn to the stored job under the store lock and persists
	// the result only if fn returns nil.
	Update(ctx context.Context, id string, fn func(*model.Job) error) (*model.Job, error)
	List(ctx context.Context, order Order) ([]*model.Job, error)
	// ListDone returns done jobs other than excludeID, oldest first.
	ListDone(ctx context.Context, excludeID string) ([]*model.Job, error)
	Delete(ctx context.Context, id string) (*model.Job, error)
	DeleteAll(ctx context.Context) ([]*model.Job, error)
	Count(ctx context.Context) (messages, files int, err error)
}
