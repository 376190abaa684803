package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.GenerationJobRepository = (*GenerationJobRepo)(nil)

type GenerationJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewGenerationJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *GenerationJobRepo {
	return &GenerationJobRepo{pool: pool, tm: tm}
}

func (r *GenerationJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = time.Now()
	payload, err := json.Marshal(job.Task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	const q = `
INSERT INTO generation_jobs (id, status, task, attempts, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  attempts = EXCLUDED.attempts,
  last_error = EXCLUDED.last_error,
  updated_at = EXCLUDED.updated_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		job.ID, string(job.Status), payload, job.Attempts, job.LastError, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *GenerationJobRepo) FetchAndMarkProcessing(ctx context.Context, staleBefore time.Time) (*model.GenerationJob, error) {
	var job *model.GenerationJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetchQuery = `
SELECT id, status, task, attempts, last_error, created_at, updated_at
FROM generation_jobs
WHERE status = 'pending'
   OR (status = 'processing' AND updated_at < $1)
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, fetchQuery, staleBefore)
		if err != nil {
			return err
		}

		var fetched model.GenerationJob
		var status string
		var payload []byte
		err = row.Scan(&fetched.ID, &status, &payload, &fetched.Attempts, &fetched.LastError, &fetched.CreatedAt, &fetched.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("scan generation job: %w", err)
		}
		if err := json.Unmarshal(payload, &fetched.Task); err != nil {
			return fmt.Errorf("decode task %s: %w", fetched.ID, err)
		}

		// Mark the job as processing so no one else picks it up
		fetched.Status = model.GenerationJobProcessing
		fetched.Attempts++
		if err := r.Save(ctx, tx, &fetched); err != nil {
			return err
		}
		job = &fetched
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}
