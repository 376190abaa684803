package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"job-insight-chat/internal/domain/model"
)

const defaultJobTTL = time.Hour

func jobKey(id string) string { return "job:" + id }

// JobCache stores job postings as JSON under job:<id>.
type JobCache struct {
	cli redis.Cmdable
	ttl time.Duration
}

func NewJobCache(cli redis.Cmdable, ttl time.Duration) *JobCache {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &JobCache{cli: cli, ttl: ttl}
}

// Get reports ok=false on a miss. An undecodable entry is treated as a miss
// and removed.
func (c *JobCache) Get(ctx context.Context, id string) (*model.Job, bool, error) {
	val, err := c.cli.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var job model.Job
	if err := json.Unmarshal(val, &job); err != nil {
		_ = c.cli.Del(ctx, jobKey(id)).Err()
		return nil, false, nil
	}
	return &job, true, nil
}

func (c *JobCache) Put(ctx context.Context, job *model.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	return c.cli.Set(ctx, jobKey(job.ID), b, c.ttl).Err()
}

func (c *JobCache) Invalidate(ctx context.Context, id string) error {
	return c.cli.Del(ctx, jobKey(id)).Err()
}
