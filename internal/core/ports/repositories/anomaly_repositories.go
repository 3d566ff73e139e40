package repositories

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// AnomalyReader defines read operations for anomaly results
type AnomalyReader interface {
	// FindResultsByEntryID retrieves anomaly results for one entry.
	FindResultsByEntryID(ctx context.Context, entryID string) ([]domain.AnomalyResult, error)

	// ListResults retrieves a paginated list of results, newest first,
	// optionally filtered by anomaly type.
	ListResults(ctx context.Context, anomalyType *domain.AnomalyType, limit int, offset int) ([]domain.AnomalyResult, error)

	// FindUnscoredEntryIDs retrieves ids of POSTED entries no scan has
	// examined yet, oldest first, capped at limit.
	FindUnscoredEntryIDs(ctx context.Context, limit int) ([]string, error)

	// AccountAmountHistory retrieves the most recent posted line amounts for
	// an account, newest first, for outlier scoring.
	AccountAmountHistory(ctx context.Context, accountID string, limit int) ([]domain.AmountSample, error)
}

// AnomalyWriter defines write operations for anomaly results
type AnomalyWriter interface {
	// SaveResults persists scan results and marks the entries examined, so a
	// clean entry is not rescanned. Never mutates journal entries.
	SaveResults(ctx context.Context, entryIDs []string, results []domain.AnomalyResult) error
}

// AnomalyRepositoryFacade combines all anomaly-related repository interfaces
// This is a facade for clients that need access to all operations
type AnomalyRepositoryFacade interface {
	AnomalyReader
	AnomalyWriter
}

// AnomalyRepositoryWithTx extends AnomalyRepositoryFacade with transaction capabilities
type AnomalyRepositoryWithTx interface {
	AnomalyRepositoryFacade
	TransactionManager
}
