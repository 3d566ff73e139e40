package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	"github.com/lendaro/loanledger/internal/models"
	"github.com/lendaro/loanledger/internal/utils/mapping"
)

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryWithTx {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryWithTx
var _ portsrepo.PeriodRepositoryWithTx = (*PgxPeriodRepository)(nil)

const selectPeriodFields = `
	period_id, name, start_date, end_date, status, closed_at, closed_by, next_sequence_no,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (models.AccountingPeriod, error) {
	var m models.AccountingPeriod
	err := row.Scan(
		&m.PeriodID,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.ClosedAt,
		&m.ClosedBy,
		&m.NextSequenceNo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePeriod inserts a new accounting period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelAccountingPeriod(period)

	query := `
		INSERT INTO accounting_periods (` + selectPeriodFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PeriodID,
		m.Name,
		m.StartDate,
		m.EndDate,
		m.Status,
		m.ClosedAt,
		m.ClosedBy,
		m.NextSequenceNo,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: period %s already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to save period %s: %w", m.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves a period by its ID.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + selectPeriodFields + `
		FROM accounting_periods
		WHERE period_id = $1;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period by ID %s: %w", periodID, err)
	}

	period := mapping.ToDomainAccountingPeriod(m)
	return &period, nil
}

// FindPeriodContaining retrieves the period whose [start, end) range contains
// the date. Ranges never overlap so at most one row matches.
func (r *PgxPeriodRepository) FindPeriodContaining(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + selectPeriodFields + `
		FROM accounting_periods
		WHERE start_date <= $1 AND $1 < end_date;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period containing %s: %w", date.Format("2006-01-02"), err)
	}

	period := mapping.ToDomainAccountingPeriod(m)
	return &period, nil
}

// FindOverlappingPeriods retrieves periods overlapping the half-open range
// [startDate, endDate).
func (r *PgxPeriodRepository) FindOverlappingPeriods(ctx context.Context, startDate, endDate time.Time) ([]domain.AccountingPeriod, error) {
	query := `
		SELECT ` + selectPeriodFields + `
		FROM accounting_periods
		WHERE start_date < $2 AND $1 < end_date
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping periods: %w", err)
	}
	defer rows.Close()

	modelPeriods := []models.AccountingPeriod{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		modelPeriods = append(modelPeriods, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", rows.Err())
	}

	return mapping.ToDomainAccountingPeriodSlice(modelPeriods), nil
}

// ListPeriods retrieves all periods ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	query := `
		SELECT ` + selectPeriodFields + `
		FROM accounting_periods
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	modelPeriods := []models.AccountingPeriod{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		modelPeriods = append(modelPeriods, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", rows.Err())
	}

	return mapping.ToDomainAccountingPeriodSlice(modelPeriods), nil
}

// CountEntriesByStatus counts journal entries in a period with the given status.
func (r *PgxPeriodRepository) CountEntriesByStatus(ctx context.Context, periodID string, status domain.EntryStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM journal_entries WHERE period_id = $1 AND status = $2;`

	var count int64
	if err := r.Pool.QueryRow(ctx, query, periodID, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s entries in period %s: %w", status, periodID, err)
	}
	return count, nil
}

// ClosePeriod transitions an OPEN period to CLOSED in one transaction. The
// draft count runs under the period row lock, so a posting in flight either
// finishes first and moves its entry out of DRAFT, or waits out the close on
// the same lock and then fails the open-period check.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, periodID string, closedBy string, closedAt time.Time) (*domain.AccountingPeriod, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	lockQuery := `
		SELECT ` + selectPeriodFields + `
		FROM accounting_periods
		WHERE period_id = $1
		FOR UPDATE;
	`
	m, err := scanPeriod(tx.QueryRow(ctx, lockQuery, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock period %s: %w", periodID, err)
	}
	if models.PeriodStatus(m.Status) != models.PeriodOpen {
		return nil, fmt.Errorf("%w: period %s", apperrors.ErrClosedPeriod, periodID)
	}

	var draftCount int64
	countQuery := `SELECT COUNT(*) FROM journal_entries WHERE period_id = $1 AND status = 'DRAFT';`
	if err := tx.QueryRow(ctx, countQuery, periodID).Scan(&draftCount); err != nil {
		return nil, fmt.Errorf("failed to count draft entries in period %s: %w", periodID, err)
	}
	if draftCount > 0 {
		return nil, fmt.Errorf("%w: period %s has %d draft entries", apperrors.ErrPeriodHasDraftEntries, periodID, draftCount)
	}

	closeQuery := `
		UPDATE accounting_periods
		SET status = 'CLOSED', closed_at = $2, closed_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE period_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, closeQuery, periodID, closedAt, closedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to close period %s: %w", periodID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: period %s disappeared during close", apperrors.ErrNotFound, periodID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	closed := mapping.ToDomainAccountingPeriod(m)
	closed.Status = domain.PeriodClosed
	closed.ClosedAt = &closedAt
	closed.ClosedBy = &closedBy
	closed.LastUpdatedAt = closedAt
	closed.LastUpdatedBy = closedBy
	return &closed, nil
}
