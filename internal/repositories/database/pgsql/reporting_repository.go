package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetLeafBalances retrieves per-account posted debit and credit totals up to
// and including asOf. VOID entries are included: under void-by-offset the
// original and the offset both stay in the ledger, which is what makes the
// line totals agree with the persisted account balances.
func (r *reportingRepository) GetLeafBalances(ctx context.Context, asOf time.Time) (map[string]domain.AccountBalance, error) {
	query := `
		SELECT l.account_id,
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.status IN ('POSTED', 'VOID') AND e.entry_date <= $1
		GROUP BY l.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying leaf balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]domain.AccountBalance)
	for rows.Next() {
		var accountID string
		var bal domain.AccountBalance
		if err := rows.Scan(&accountID, &bal.Debit, &bal.Credit); err != nil {
			return nil, fmt.Errorf("error scanning leaf balance row: %w", err)
		}
		balances[accountID] = bal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaf balance rows: %w", err)
	}

	return balances, nil
}

// GetAccountActivity retrieves posted lines for an account within [from, to],
// in ledger order: entry date, then the sequence number claimed at posting.
func (r *reportingRepository) GetAccountActivity(ctx context.Context, accountID string, from, to time.Time) ([]domain.AccountActivityRow, error) {
	query := `
		SELECT e.entry_id, e.sequence_no, e.entry_date, e.description,
			l.debit, l.credit, l.running_balance
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1
			AND e.status IN ('POSTED', 'VOID')
			AND e.entry_date >= $2 AND e.entry_date <= $3
		ORDER BY e.entry_date, e.sequence_no, l.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying activity for account %s: %w", accountID, err)
	}
	defer rows.Close()

	result := []domain.AccountActivityRow{}
	for rows.Next() {
		var row domain.AccountActivityRow
		if err := rows.Scan(
			&row.EntryID,
			&row.SequenceNo,
			&row.EntryDate,
			&row.Description,
			&row.Debit,
			&row.Credit,
			&row.Balance,
		); err != nil {
			return nil, fmt.Errorf("error scanning account activity row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}

	return result, nil
}

// GetPeriodSummaries retrieves per-period counts and line totals over entries
// that carry a sequence number, which is every entry ever posted.
func (r *reportingRepository) GetPeriodSummaries(ctx context.Context) ([]domain.PeriodSummaryRow, error) {
	query := `
		SELECT p.period_id, p.name, p.status,
			COUNT(DISTINCT e.entry_id) AS entry_count,
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM accounting_periods p
		LEFT JOIN journal_entries e ON e.period_id = p.period_id AND e.status IN ('POSTED', 'VOID')
		LEFT JOIN journal_lines l ON l.entry_id = e.entry_id
		GROUP BY p.period_id, p.name, p.status, p.start_date
		ORDER BY p.start_date;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying period summaries: %w", err)
	}
	defer rows.Close()

	result := []domain.PeriodSummaryRow{}
	for rows.Next() {
		var row domain.PeriodSummaryRow
		var status string
		if err := rows.Scan(
			&row.PeriodID,
			&row.PeriodName,
			&status,
			&row.EntryCount,
			&row.TotalDebit,
			&row.TotalCredit,
		); err != nil {
			return nil, fmt.Errorf("error scanning period summary row: %w", err)
		}
		row.Status = domain.PeriodStatus(status)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period summary rows: %w", err)
	}

	return result, nil
}
