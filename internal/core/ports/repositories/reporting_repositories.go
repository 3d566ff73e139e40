package repositories

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetLeafBalances retrieves per-account posted debit/credit totals up to
	// and including asOf. Summary rollup happens in the service via the
	// account tree.
	GetLeafBalances(ctx context.Context, asOf time.Time) (map[string]domain.AccountBalance, error)

	// GetAccountActivity retrieves posted lines for an account within a date
	// range, ordered by entry date then sequence.
	GetAccountActivity(ctx context.Context, accountID string, from, to time.Time) ([]domain.AccountActivityRow, error)

	// GetPeriodSummaries retrieves per-period posted entry counts and totals.
	GetPeriodSummaries(ctx context.Context) ([]domain.PeriodSummaryRow, error)
}
