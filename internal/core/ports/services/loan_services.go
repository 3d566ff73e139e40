package services

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/dto"
)

// LoanReaderSvc defines read operations for loan data
type LoanReaderSvc interface {
	// GetLoanByID retrieves a specific loan.
	GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoans retrieves a paginated list of loans.
	ListLoans(ctx context.Context, limit, offset int) ([]domain.Loan, error)

	// ListLoanEvents retrieves the lifecycle events of a loan.
	ListLoanEvents(ctx context.Context, loanID string) ([]domain.LoanEvent, error)
}

// LoanWriterSvc defines write operations for loan data
type LoanWriterSvc interface {
	// CreateLoan persists a new PENDING loan.
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)
}

// LoanLifecycleSvc drives loan state changes. Each operation emits a typed
// event, resolves it through the mapping engine and posts the resulting
// entry, storing the entry id on the event.
type LoanLifecycleSvc interface {
	// Disburse activates a PENDING loan and posts the disbursement entry.
	Disburse(ctx context.Context, loanID string, userID string) (*domain.LoanEvent, error)

	// RecordRepayment reduces outstanding principal and posts the repayment entry.
	RecordRepayment(ctx context.Context, loanID string, req dto.LoanPaymentRequest, userID string) (*domain.LoanEvent, error)

	// ChargeFee posts a fee entry against the loan.
	ChargeFee(ctx context.Context, loanID string, req dto.LoanFeeRequest, userID string) (*domain.LoanEvent, error)

	// WriteOff terminates the loan and posts the write-off entry.
	WriteOff(ctx context.Context, loanID string, userID string) (*domain.LoanEvent, error)
}

// LoanSvcFacade combines all loan-related service interfaces
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
	LoanLifecycleSvc
}
