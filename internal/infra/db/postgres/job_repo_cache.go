package postgres

import (
	"context"

	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/metrics"
)

var _ repository.JobRepository = (*jobRepoCacheDecorator)(nil)

// JobCache is satisfied by redis.JobCache.
type JobCache interface {
	Get(ctx context.Context, id string) (*model.Job, bool, error)
	Put(ctx context.Context, job *model.Job) error
}

// Job postings are read on every submission and never mutated by this
// service, so a read-through cache with TTL is enough.
type jobRepoCacheDecorator struct {
	inner repository.JobRepository
	cache JobCache
}

func NewJobRepoCacheDecorator(inner repository.JobRepository, cache JobCache) repository.JobRepository {
	return &jobRepoCacheDecorator{inner: inner, cache: cache}
}

func (d *jobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	job, ok, err := d.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.IncCacheRequest("job", "error")
	case ok:
		metrics.IncCacheRequest("job", "hit")
		return job, nil
	default:
		metrics.IncCacheRequest("job", "miss")
	}

	job, err = d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	_ = d.cache.Put(ctx, job)
	return job, nil
}
