package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	const q = `
SELECT id, user_id, job_title, COALESCE(processed_description, ''), created_at
  FROM jobs
 WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var j model.Job
	if err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.ProcessedDescription, &j.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}

// Upsert inserts or replaces a job. It backs seeding; jobs are otherwise
// owned by the job ingestion side.
func (r *JobRepo) Upsert(ctx context.Context, tx repository.Tx, j *model.Job) error {
	if j == nil || j.ID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO jobs (id, user_id, job_title, processed_description)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE
   SET user_id = EXCLUDED.user_id,
       job_title = EXCLUDED.job_title,
       processed_description = EXCLUDED.processed_description;`
	if _, err := execSQL(ctx, r.pool, tx, q, j.ID, j.UserID, j.Title, j.ProcessedDescription); err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}
