package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

// jobRepo is a process-lifetime job store guarded by a single RWMutex.
type jobRepo struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

func NewJobRepo() *jobRepo {
	return &jobRepo{jobs: make(map[string]*model.Job)}
}

func (r *jobRepo) Save(ctx context.Context, job *model.Job) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job without id", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		return fmt.Errorf("%w: job %s", domain.ErrAlreadyExists, job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *jobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return j.Clone(), nil
}

func (r *jobRepo) Update(ctx context.Context, id string, fn func(*model.Job) error) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := j.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.jobs[id] = next
	return next.Clone(), nil
}

func (r *jobRepo) List(ctx context.Context, order repository.Order) ([]*model.Job, error) {
	r.mu.RLock()
	out := make([]*model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Clone())
	}
	r.mu.RUnlock()
	sortJobs(out, order)
	return out, nil
}

func (r *jobRepo) ListDone(ctx context.Context, excludeID string) ([]*model.Job, error) {
	r.mu.RLock()
	out := make([]*model.Job, 0, len(r.jobs))
	for id, j := range r.jobs {
		if id == excludeID || j.Status != model.JobStatusDone {
			continue
		}
		out = append(out, j.Clone())
	}
	r.mu.RUnlock()
	sortJobs(out, repository.OrderAsc)
	return out, nil
}

func (r *jobRepo) Delete(ctx context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.jobs, id)
	return j, nil
}

func (r *jobRepo) DeleteAll(ctx context.Context) ([]*model.Job, error) {
	r.mu.Lock()
	old := r.jobs
	r.jobs = make(map[string]*model.Job)
	r.mu.Unlock()

	out := make([]*model.Job, 0, len(old))
	for _, j := range old {
		out = append(out, j)
	}
	sortJobs(out, repository.OrderAsc)
	return out, nil
}

func (r *jobRepo) Count(ctx context.Context) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var msgs, files int
	for _, j := range r.jobs {
		switch j.Kind {
		case model.JobKindMessage:
			msgs++
		case model.JobKindFile:
			files++
		}
	}
	return msgs, files, nil
}

// sortJobs orders by CreatedAt, breaking ties by id (ULIDs sort by time).
func sortJobs(jobs []*model.Job, order repository.Order) {
	sort.SliceStable(jobs, func(i, k int) bool {
		a, b := jobs[i], jobs[k]
		if order == repository.OrderDesc {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
