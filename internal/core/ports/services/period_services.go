package services

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/dto"
)

// PeriodReaderSvc defines read operations for accounting period data
type PeriodReaderSvc interface {
	// GetPeriodByID retrieves a specific period.
	GetPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error)

	// EnsureOpenFor resolves the OPEN period containing the given date.
	// Fails with the closed-period error when the containing period is closed
	// or no period covers the date.
	EnsureOpenFor(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error)
}

// PeriodWriterSvc defines write operations for accounting period data
type PeriodWriterSvc interface {
	// CreatePeriod persists a new period after overlap validation.
	CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, creatorUserID string) (*domain.AccountingPeriod, error)

	// ClosePeriod transitions an OPEN period to CLOSED. Terminal: there is no
	// reopen. Fails when draft entries still reference the period.
	ClosePeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error)
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
