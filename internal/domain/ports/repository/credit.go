package repository

import (
	"context"
)

// CreditLedger is the account ledger. Balance of an unknown user is reported
// as domain.ErrNotFound.
type CreditLedger interface {
	Balance(ctx context.Context, tx Tx, userID string) (int64, error)
	// Debit charges amount for messageID. It is idempotent per messageID:
	// a second call for the same message returns (false, nil) without charging.
	Debit(ctx context.Context, tx Tx, userID, messageID string, amount int64) (charged bool, err error)
}
