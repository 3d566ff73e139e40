package repositories

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// LoanReader defines read operations for loan data
type LoanReader interface {
	// FindLoanByID retrieves a specific loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// FindLoanByReferenceCode retrieves a loan by its human-facing code.
	FindLoanByReferenceCode(ctx context.Context, referenceCode string) (*domain.Loan, error)

	// ListLoans retrieves a paginated list of loans.
	ListLoans(ctx context.Context, limit int, offset int) ([]domain.Loan, error)

	// FindAccruingLoans retrieves loans that earn interest: ACTIVE status with
	// positive outstanding principal.
	FindAccruingLoans(ctx context.Context) ([]domain.Loan, error)
}

// LoanWriter defines write operations for loan data
type LoanWriter interface {
	// SaveLoan persists a new loan.
	SaveLoan(ctx context.Context, loan domain.Loan) error

	// UpdateLoan updates an existing loan's terms, status and outstanding principal.
	UpdateLoan(ctx context.Context, loan domain.Loan) error
}

// LoanEventReader defines read operations for loan lifecycle events
type LoanEventReader interface {
	// FindEventByID retrieves a specific loan event.
	FindEventByID(ctx context.Context, eventID string) (*domain.LoanEvent, error)

	// FindEventsByLoanID retrieves all events for a loan ordered by occurrence.
	FindEventsByLoanID(ctx context.Context, loanID string) ([]domain.LoanEvent, error)
}

// LoanEventWriter defines write operations for loan lifecycle events
type LoanEventWriter interface {
	// SaveEvent persists a new loan event.
	SaveEvent(ctx context.Context, event domain.LoanEvent) error

	// SetEventEntryID records the journal entry an event was posted as.
	SetEventEntryID(ctx context.Context, eventID string, entryID string) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
// This is a facade for clients that need access to all operations
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	LoanEventReader
	LoanEventWriter
}

// LoanRepositoryWithTx extends LoanRepositoryFacade with transaction capabilities
type LoanRepositoryWithTx interface {
	LoanRepositoryFacade
	TransactionManager
}
