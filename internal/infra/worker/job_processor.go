package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/adapter"
	"job-insight-chat/internal/domain/ports/repository"
)

// JobProcessor drains the generation_jobs queue.
type JobProcessor struct {
	jobs     repository.GenerationJobRepository
	runner   TaskRunner
	locker   adapter.Locker
	lockTTL  time.Duration
	interval time.Duration
	now      func() time.Time
	log      *zerolog.Logger
}

func NewJobProcessor(
	jobs repository.GenerationJobRepository,
	runner TaskRunner,
	locker adapter.Locker,
	lockTTL, interval time.Duration,
	logger *zerolog.Logger,
) *JobProcessor {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	l := logger.With().Str("component", "JobProcessor").Logger()
	return &JobProcessor{jobs: jobs, runner: runner, locker: locker, lockTTL: lockTTL, interval: interval, now: time.Now, log: &l}
}

// Start runs a loop to fetch and process jobs.
// This should be run in a goroutine.
func (p *JobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Dur("interval", p.interval).Msg("job processor started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("job processor stopping")
			return
		case <-ticker.C:
			// A full pool means the workers are busy; the job stays pending.
			_ = pool.Submit(func(ctx context.Context) error {
				p.ProcessOne(ctx)
				return nil
			})
		}
	}
}

// ProcessOne claims at most one pending job and runs it. A job left
// 'processing' for longer than the lock TTL lost its worker and is claimed
// again. It reports whether a job was claimed.
func (p *JobProcessor) ProcessOne(ctx context.Context) bool {
	job, err := p.jobs.FetchAndMarkProcessing(ctx, p.now().Add(-p.lockTTL))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error().Err(err).Msg("failed to fetch generation job")
		}
		return false
	}

	log := p.log.With().Str("job_id", job.ID).Str("task_id", job.Task.ID).Int("attempt", job.Attempts).Logger()
	log.Info().Msg("processing generation job")
	start := time.Now()

	err = runGuarded(ctx, p.locker, p.lockTTL, p.runner, job.Task)

	job.Status = model.GenerationJobCompleted
	job.LastError = ""
	if err != nil {
		job.Status = model.GenerationJobFailed
		job.LastError = err.Error()
		log.Error().Err(err).Msg("generation job failed")
	}
	if err := p.jobs.Save(context.WithoutCancel(ctx), repository.NoTX, job); err != nil {
		log.Error().Err(err).Msg("failed to record generation job status")
	}
	log.Info().Str("status", string(job.Status)).Dur("duration", time.Since(start)).Msg("generation job finished")
	return true
}
