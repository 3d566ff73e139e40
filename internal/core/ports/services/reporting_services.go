package services

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// ReportingSvcFacade defines operations for generating financial reports
type ReportingSvcFacade interface {
	// TrialBalance generates a trial balance as of a date, with summary
	// accounts rolled up from their subtrees.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.ReportData, error)

	// AccountActivity generates the posted activity of one account over a
	// date range with running balances.
	AccountActivity(ctx context.Context, accountID string, from, to time.Time) (*domain.ReportData, error)

	// PeriodSummary generates per-period posted totals.
	PeriodSummary(ctx context.Context) (*domain.ReportData, error)
}

// ExportSvc renders report data to bytes in a caller-chosen format.
// Decimal cells serialize as exact decimal strings in every format.
type ExportSvc interface {
	// Render renders the report in the given format ("csv", "json", "xml")
	// and returns the bytes plus the content type.
	Render(report *domain.ReportData, format string) ([]byte, string, error)
}
