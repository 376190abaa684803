// File: internal/infra/db/postgres/conversation_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

const conversationColumns = `id, user_id, job_id, text, role, status, created_at, updated_at`

func (r *ConversationRepo) Create(ctx context.Context, tx repository.Tx, m *model.ConversationMessage) error {
	if m == nil || m.JobID == "" || !m.Role.Valid() || !m.Status.Valid() {
		return domain.ErrInvalidArgument
	}
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.Before(m.CreatedAt) {
		m.UpdatedAt = m.CreatedAt
	}

	const q = `
INSERT INTO job_insight_conversations (` + conversationColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.UserID, m.JobID, m.Text, string(m.Role), string(m.Status), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return fmt.Errorf("%w: insert message: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

func (r *ConversationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ConversationMessage, error) {
	const q = `SELECT ` + conversationColumns + ` FROM job_insight_conversations WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanMessage(row)
}

func (r *ConversationRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.ConversationMessage, error) {
	const q = `
SELECT ` + conversationColumns + `
  FROM job_insight_conversations
 WHERE job_id = $1
 ORDER BY created_at ASC, id ASC;`
	return r.list(ctx, tx, q, jobID)
}

func (r *ConversationRepo) RecentByJob(ctx context.Context, tx repository.Tx, jobID string, limit int) ([]*model.ConversationMessage, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	const q = `
SELECT ` + conversationColumns + `
  FROM job_insight_conversations
 WHERE job_id = $1
 ORDER BY created_at DESC, id DESC
 LIMIT $2;`
	return r.list(ctx, tx, q, jobID, limit)
}

// Update is a single conditional UPDATE ... RETURNING so the patch is applied
// atomically. updated_at never moves backwards even if clocks skew.
func (r *ConversationRepo) Update(ctx context.Context, tx repository.Tx, id string, patch model.MessagePatch) (*model.ConversationMessage, error) {
	var status *string
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, domain.ErrInvalidArgument
		}
		s := string(*patch.Status)
		status = &s
	}

	const q = `
UPDATE job_insight_conversations
   SET text       = COALESCE($2, text),
       status     = COALESCE($3, status),
       updated_at = GREATEST(updated_at, $4)
 WHERE id = $1
   AND (NOT $5 OR status = 'PENDING')
RETURNING ` + conversationColumns + `;`
	row, err := pickRow(ctx, r.pool, tx, q, id, patch.Text, status, time.Now(), patch.OnlyIfPending)
	if err != nil {
		return nil, err
	}
	m, err := scanMessage(row)
	if errors.Is(err, domain.ErrNotFound) {
		// Distinguish a missing record from a guarded terminal one.
		if _, ferr := r.FindByID(ctx, tx, id); ferr == nil {
			return nil, domain.ErrInvalidTransition
		}
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update message: %v", domain.ErrPersistenceFailure, err)
	}
	return m, nil
}

func (r *ConversationRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM job_insight_conversations WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("%w: delete message: %v", domain.ErrPersistenceFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConversationRepo) FailStalePending(ctx context.Context, tx repository.Tx, olderThan time.Time, text string) (int64, error) {
	const q = `
UPDATE job_insight_conversations
   SET status = 'FAILED', text = $2, updated_at = GREATEST(updated_at, now())
 WHERE status = 'PENDING'
   AND updated_at < $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, olderThan, text)
	if err != nil {
		return 0, fmt.Errorf("%w: fail stale messages: %v", domain.ErrPersistenceFailure, err)
	}
	return tag.RowsAffected(), nil
}

func (r *ConversationRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.ConversationMessage, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()
	out := make([]*model.ConversationMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func scanMessage(row pgx.Row) (*model.ConversationMessage, error) {
	var m model.ConversationMessage
	var role, status string
	if err := row.Scan(&m.ID, &m.UserID, &m.JobID, &m.Text, &role, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	m.Role = model.Role(role)
	m.Status = model.MessageStatus(status)
	return &m, nil
}
