package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by repositories whose write paths run
// inside explicit transactions. Posting and voiding compose several of these
// calls under one tx.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback is a no-op on a committed tx, so callers can defer it.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx marks repositories that expose transaction management.
type RepositoryWithTx interface {
	TransactionManager
}
