package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/adapter"
	"job-insight-chat/internal/domain/ports/repository"
	"job-insight-chat/internal/infra/metrics"
)

// TaskRunner executes one generation task to its terminal state.
type TaskRunner interface {
	Generate(ctx context.Context, task model.GenerationTask) error
}

func LockKey(taskID string) string { return "lock:generation:" + taskID }

// runGuarded runs task under a per-task lock so a task is never executed by
// two workers at once.
func runGuarded(ctx context.Context, locker adapter.Locker, ttl time.Duration, runner TaskRunner, task model.GenerationTask) error {
	key := LockKey(task.ID)
	token, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("lock task %s: %w", task.ID, err)
	}
	defer func() { _ = locker.Unlock(context.WithoutCancel(ctx), key, token) }()
	return runner.Generate(ctx, task)
}

var _ adapter.JobDispatcher = (*PoolDispatcher)(nil)

// PoolDispatcher runs tasks in-process on the worker pool.
type PoolDispatcher struct {
	pool   *Pool
	runner TaskRunner
	locker adapter.Locker
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewPoolDispatcher(pool *Pool, runner TaskRunner, locker adapter.Locker, ttl time.Duration, logger *zerolog.Logger) *PoolDispatcher {
	return &PoolDispatcher{pool: pool, runner: runner, locker: locker, ttl: ttl, log: logger}
}

// Enqueue waits for a pool slot until ctx is done rather than dropping task.
func (d *PoolDispatcher) Enqueue(ctx context.Context, task model.GenerationTask) error {
	err := d.pool.SubmitWait(ctx, func(ctx context.Context) error {
		if err := runGuarded(ctx, d.locker, d.ttl, d.runner, task); err != nil {
			if errors.Is(err, domain.ErrTaskInProgress) {
				d.log.Warn().Str("task_id", task.ID).Msg("generation task already running; skipped")
				return nil
			}
			return err
		}
		return nil
	})
	metrics.IncDispatch("pool", err)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	return nil
}

var _ adapter.JobDispatcher = (*QueueDispatcher)(nil)

// QueueDispatcher persists tasks in the generation_jobs table; a JobProcessor
// on any instance picks them up.
type QueueDispatcher struct {
	jobs repository.GenerationJobRepository
}

func NewQueueDispatcher(jobs repository.GenerationJobRepository) *QueueDispatcher {
	return &QueueDispatcher{jobs: jobs}
}

func (d *QueueDispatcher) Enqueue(ctx context.Context, task model.GenerationTask) error {
	job := &model.GenerationJob{
		ID:        uuid.NewString(),
		Status:    model.GenerationJobPending,
		Task:      task,
		CreatedAt: time.Now(),
	}
	err := d.jobs.Save(ctx, repository.NoTX, job)
	metrics.IncDispatch("queue", err)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	return nil
}
