package repositories

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// AccrualReader defines read operations for accrual batch data
type AccrualReader interface {
	// FindBatchByID retrieves a specific accrual batch.
	FindBatchByID(ctx context.Context, batchID string) (*domain.AccrualBatch, error)

	// ListBatches retrieves a paginated list of batches, newest first.
	ListBatches(ctx context.Context, limit int, offset int) ([]domain.AccrualBatch, error)

	// FindBatchEntries retrieves the (entry, loan, day) records of a batch,
	// which tell a resumed run what is already committed.
	FindBatchEntries(ctx context.Context, batchID string) ([]domain.AccrualBatchEntry, error)
}

// AccrualWriter defines write operations for accrual batch data
type AccrualWriter interface {
	// CreateBatch inserts a RUNNING batch within a single transaction that
	// holds an advisory lock keyed on the date range. A RUNNING or COMPLETED
	// batch overlapping the same range rejects the insert.
	CreateBatch(ctx context.Context, batch domain.AccrualBatch) error

	// SaveBatchEntry links one posted accrual entry to its batch, loan and day.
	SaveBatchEntry(ctx context.Context, be domain.AccrualBatchEntry) error

	// UpdateBatchStatus finalizes a batch run, recording the outcome, entry
	// count and an optional failure detail.
	UpdateBatchStatus(ctx context.Context, batchID string, status domain.AccrualBatchStatus, entryCount int, failureDetail *string) error
}

// AccrualRepositoryFacade combines all accrual-related repository interfaces
// This is a facade for clients that need access to all operations
type AccrualRepositoryFacade interface {
	AccrualReader
	AccrualWriter
}

// AccrualRepositoryWithTx extends AccrualRepositoryFacade with transaction capabilities
type AccrualRepositoryWithTx interface {
	AccrualRepositoryFacade
	TransactionManager
}
