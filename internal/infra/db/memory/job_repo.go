package memory

import (
	"context"
	"sync"
	"time"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.Job
}

func NewJobRepo() *JobRepo {
	return &JobRepo{byID: map[string]*model.Job{}}
}

// Put inserts or replaces a job. Used for seeding in dev mode and tests.
func (r *JobRepo) Put(job *model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.byID[job.ID] = &cp
}

func (r *JobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}
