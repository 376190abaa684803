package adapter

import (
	"context"
	"time"

	"job-insight-chat/internal/domain/model"
)

// JobDispatcher runs a generation task once, decoupled from the request that
// enqueued it. Enqueue must not wait for the task to run.
type JobDispatcher interface {
	Enqueue(ctx context.Context, task model.GenerationTask) error
}

// Locker guards a task against concurrent execution.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
