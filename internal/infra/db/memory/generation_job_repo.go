package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.GenerationJobRepository = (*GenerationJobRepo)(nil)

type GenerationJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.GenerationJob
}

func NewGenerationJobRepo() *GenerationJobRepo {
	return &GenerationJobRepo{jobs: map[string]*model.GenerationJob{}}
}

func (r *GenerationJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = time.Now()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *GenerationJobRepo) FetchAndMarkProcessing(ctx context.Context, staleBefore time.Time) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*model.GenerationJob
	for _, j := range r.jobs {
		stale := j.Status == model.GenerationJobProcessing && j.UpdatedAt.Before(staleBefore)
		if j.Status == model.GenerationJobPending || stale {
			pending = append(pending, j)
		}
	}
	if len(pending) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(pending, func(a, b int) bool { return pending[a].CreatedAt.Before(pending[b].CreatedAt) })
	j := pending[0]
	j.Status = model.GenerationJobProcessing
	j.Attempts++
	j.UpdatedAt = time.Now()
	cp := *j
	return &cp, nil
}

// Get returns a copy of a stored job.
func (r *GenerationJobRepo) Get(id string) (*model.GenerationJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *j
	return &cp, true
}

// All returns copies of every stored job.
func (r *GenerationJobRepo) All() []*model.GenerationJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.GenerationJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		cp := *j
		out = append(out, &cp)
	}
	return out
}
