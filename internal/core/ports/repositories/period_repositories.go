package repositories

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// PeriodReader defines read operations for accounting period data
type PeriodReader interface {
	// FindPeriodByID retrieves a specific period by its unique identifier.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodContaining retrieves the period whose [start, end) range
	// contains the given date.
	FindPeriodContaining(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error)

	// FindOverlappingPeriods retrieves periods overlapping the given range.
	FindOverlappingPeriods(ctx context.Context, startDate, endDate time.Time) ([]domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error)

	// CountEntriesByStatus counts journal entries in a period with the given status.
	CountEntriesByStatus(ctx context.Context, periodID string, status domain.EntryStatus) (int64, error)
}

// PeriodWriter defines write operations for accounting period data
type PeriodWriter interface {
	// SavePeriod persists a new accounting period.
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// ClosePeriod transitions an OPEN period to CLOSED within a single
	// transaction: the period row is locked, draft entries referencing the
	// period are counted under the lock, and the close is rejected when any
	// exist. Stamps closed_at and closed_by.
	ClosePeriod(ctx context.Context, periodID string, closedBy string, closedAt time.Time) (*domain.AccountingPeriod, error)
}

// PeriodRepositoryFacade combines all period-related repository interfaces
// This is a facade for clients that need access to all operations
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}

// PeriodRepositoryWithTx extends PeriodRepositoryFacade with transaction capabilities
type PeriodRepositoryWithTx interface {
	PeriodRepositoryFacade
	TransactionManager
}
