package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/ports/repository"
)

var _ repository.CreditLedger = (*CreditLedger)(nil)

// CreditLedger stores balances in api_limits and one row per charged message
// in credit_settlements, which makes Debit idempotent per message.
type CreditLedger struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewCreditLedger(pool *pgxpool.Pool, tm repository.TransactionManager) *CreditLedger {
	return &CreditLedger{pool: pool, tm: tm}
}

func (l *CreditLedger) Balance(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	const q = `SELECT credits FROM api_limits WHERE user_id = $1;`
	row, err := pickRow(ctx, l.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var credits int64
	if err := row.Scan(&credits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("scan balance: %w", err)
	}
	return credits, nil
}

func (l *CreditLedger) Debit(ctx context.Context, tx repository.Tx, userID, messageID string, amount int64) (bool, error) {
	if amount <= 0 || messageID == "" {
		return false, domain.ErrInvalidArgument
	}
	if tx != nil {
		return l.debit(ctx, tx, userID, messageID, amount)
	}
	var charged bool
	err := l.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		charged, err = l.debit(ctx, tx, userID, messageID, amount)
		return err
	})
	return charged, err
}

func (l *CreditLedger) debit(ctx context.Context, tx repository.Tx, userID, messageID string, amount int64) (bool, error) {
	const qSettle = `
INSERT INTO credit_settlements (message_id, user_id, amount, settled_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (message_id) DO NOTHING;`
	tag, err := execSQL(ctx, l.pool, tx, qSettle, messageID, userID, amount)
	if err != nil {
		return false, fmt.Errorf("record settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	const qDebit = `
UPDATE api_limits
   SET credits = credits - $2, updated_at = NOW()
 WHERE user_id = $1 AND credits >= $2
RETURNING credits;`
	row, err := pickRow(ctx, l.pool, tx, qDebit, userID, amount)
	if err != nil {
		return false, err
	}
	var remaining int64
	if err := row.Scan(&remaining); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("debit credits: %w", err)
		}
		available, berr := l.Balance(ctx, tx, userID)
		if berr != nil {
			return false, berr
		}
		return false, &domain.InsufficientCreditsError{Required: amount, Available: available}
	}
	return true, nil
}

// Grant adds credits to a user's balance, creating the row on first use, and
// returns the new balance.
func (l *CreditLedger) Grant(ctx context.Context, tx repository.Tx, userID string, credits int64) (int64, error) {
	if userID == "" || credits <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO api_limits (user_id, credits, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
   SET credits = api_limits.credits + EXCLUDED.credits,
       updated_at = now()
RETURNING credits;`
	row, err := pickRow(ctx, l.pool, tx, q, userID, credits)
	if err != nil {
		return 0, err
	}
	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, fmt.Errorf("grant credits: %w", err)
	}
	return balance, nil
}
