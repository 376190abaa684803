package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an infra-defined transaction handle (pgx.Tx for Postgres). Repositories
// MUST accept nil and fall back to their non-transactional path.
type Tx interface{}

var NoTX Tx

// TransactionManager runs fn inside a database transaction, passing the handle
// through tx. An error returned by fn rolls the transaction back.
//
//	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//		charged, err := ledger.Debit(ctx, tx, userID, messageID, cost)
//		...
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
