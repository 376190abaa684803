//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"job-insight-chat/internal/domain"
)

func TestCreditLedger_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	ledger := NewCreditLedger(testPool, NewTxManager(testPool))

	t.Run("should debit once per message", func(t *testing.T) {
		cleanup(t)
		seedCredits(t, "user-1", 3)

		charged, err := ledger.Debit(ctx, nil, "user-1", "msg-1", 1)
		if err != nil || !charged {
			t.Fatalf("expected first debit to charge, got charged=%v err=%v", charged, err)
		}
		charged, err = ledger.Debit(ctx, nil, "user-1", "msg-1", 1)
		if err != nil || charged {
			t.Fatalf("expected duplicate debit to be a no-op, got charged=%v err=%v", charged, err)
		}

		balance, err := ledger.Balance(ctx, nil, "user-1")
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if balance != 2 {
			t.Errorf("expected balance 2, got %d", balance)
		}
	})

	t.Run("should refuse to overdraw and keep no settlement", func(t *testing.T) {
		cleanup(t)
		seedCredits(t, "user-2", 0)

		_, err := ledger.Debit(ctx, nil, "user-2", "msg-2", 1)
		var insufficient *domain.InsufficientCreditsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientCreditsError, got %v", err)
		}
		if insufficient.Available != 0 || insufficient.Required != 1 {
			t.Errorf("unexpected error payload: %+v", insufficient)
		}

		var n int
		if err := testPool.QueryRow(ctx, `SELECT COUNT(*) FROM credit_settlements WHERE message_id = 'msg-2'`).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Errorf("expected settlement to be rolled back, found %d rows", n)
		}
	})

	t.Run("should report unknown users as not found", func(t *testing.T) {
		cleanup(t)
		if _, err := ledger.Balance(ctx, nil, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should create and top up balances on grant", func(t *testing.T) {
		cleanup(t)
		if got, err := ledger.Grant(ctx, nil, "user-3", 5); err != nil || got != 5 {
			t.Fatalf("first grant: got %d, %v", got, err)
		}
		if got, err := ledger.Grant(ctx, nil, "user-3", 2); err != nil || got != 7 {
			t.Fatalf("second grant: got %d, %v", got, err)
		}
		if _, err := ledger.Grant(ctx, nil, "user-3", 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for zero grant, got %v", err)
		}
	})
}
