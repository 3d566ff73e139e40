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

type PgxAccrualRepository struct {
	BaseRepository
}

// newPgxAccrualRepository creates a new repository for accrual batch data.
func newPgxAccrualRepository(pool *pgxpool.Pool) portsrepo.AccrualRepositoryWithTx {
	return &PgxAccrualRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAccrualRepository implements portsrepo.AccrualRepositoryWithTx
var _ portsrepo.AccrualRepositoryWithTx = (*PgxAccrualRepository)(nil)

const selectAccrualBatchFields = `
	batch_id, start_date, end_date, status, run_at, run_by, failure_detail, entry_count,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccrualBatch(row pgx.Row) (models.AccrualBatch, error) {
	var m models.AccrualBatch
	err := row.Scan(
		&m.BatchID,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.RunAt,
		&m.RunBy,
		&m.FailureDetail,
		&m.EntryCount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateBatch inserts a RUNNING batch in one transaction guarded by an
// advisory lock on the date range. Two processes racing to accrue the same
// range serialize on the lock; the loser then sees the winner's row in the
// overlap check. The partial unique index on (start_date, end_date) is the
// schema-level backstop for the exact-range case.
func (r *PgxAccrualRepository) CreateBatch(ctx context.Context, batch domain.AccrualBatch) error {
	m := mapping.ToModelAccrualBatch(batch)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	// Keyed on the range so unrelated ranges don't serialize. Released at
	// commit or rollback.
	lockKey := fmt.Sprintf("accrual:%s:%s", m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, lockKey); err != nil {
		return fmt.Errorf("failed to take accrual advisory lock: %w", err)
	}

	overlapQuery := `
		SELECT batch_id, status
		FROM accrual_batches
		WHERE start_date < $2 AND $1 < end_date
			AND status IN ('RUNNING', 'COMPLETED')
		LIMIT 1;
	`
	var existingID, existingStatus string
	err = tx.QueryRow(ctx, overlapQuery, m.StartDate, m.EndDate).Scan(&existingID, &existingStatus)
	if err == nil {
		return fmt.Errorf("%w: batch %s (%s) already covers part of this range", apperrors.ErrDuplicateBatch, existingID, existingStatus)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check for overlapping accrual batches: %w", err)
	}

	insertQuery := `
		INSERT INTO accrual_batches (` + selectAccrualBatchFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.BatchID,
		m.StartDate,
		m.EndDate,
		m.Status,
		m.RunAt,
		m.RunBy,
		m.FailureDetail,
		m.EntryCount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: a batch for this range already exists", apperrors.ErrDuplicateBatch)
		}
		return fmt.Errorf("failed to insert accrual batch %s: %w", m.BatchID, err)
	}

	return r.Commit(ctx, tx)
}

// FindBatchByID retrieves an accrual batch by its ID.
func (r *PgxAccrualRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.AccrualBatch, error) {
	query := `
		SELECT ` + selectAccrualBatchFields + `
		FROM accrual_batches
		WHERE batch_id = $1;
	`
	m, err := scanAccrualBatch(r.Pool.QueryRow(ctx, query, batchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find accrual batch by ID %s: %w", batchID, err)
	}

	batch := mapping.ToDomainAccrualBatch(m)
	return &batch, nil
}

// ListBatches retrieves a paginated list of batches, newest run first.
func (r *PgxAccrualRepository) ListBatches(ctx context.Context, limit int, offset int) ([]domain.AccrualBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + selectAccrualBatchFields + `
		FROM accrual_batches
		ORDER BY run_at DESC, batch_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accrual batches: %w", err)
	}
	defer rows.Close()

	modelBatches := []models.AccrualBatch{}
	for rows.Next() {
		m, err := scanAccrualBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accrual batch row: %w", err)
		}
		modelBatches = append(modelBatches, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating accrual batch rows: %w", rows.Err())
	}

	return mapping.ToDomainAccrualBatchSlice(modelBatches), nil
}

// SaveBatchEntry links one posted accrual entry to its batch, loan and day.
// The ledger entry is already committed when this runs, so the link is what
// tells a resumed run to skip this loan-day.
func (r *PgxAccrualRepository) SaveBatchEntry(ctx context.Context, be domain.AccrualBatchEntry) error {
	query := `
		INSERT INTO accrual_batch_entries (batch_id, entry_id, loan_id, accrual_date)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query, be.BatchID, be.EntryID, be.LoanID, be.AccrualDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: loan %s already accrued for %s in batch %s",
				apperrors.ErrDuplicate, be.LoanID, be.AccrualDate.Format("2006-01-02"), be.BatchID)
		}
		return fmt.Errorf("failed to save accrual batch entry for loan %s: %w", be.LoanID, err)
	}
	return nil
}

// FindBatchEntries retrieves the committed (entry, loan, day) records of a batch.
func (r *PgxAccrualRepository) FindBatchEntries(ctx context.Context, batchID string) ([]domain.AccrualBatchEntry, error) {
	query := `
		SELECT batch_id, entry_id, loan_id, accrual_date
		FROM accrual_batch_entries
		WHERE batch_id = $1
		ORDER BY accrual_date, loan_id;
	`
	rows, err := r.Pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of batch %s: %w", batchID, err)
	}
	defer rows.Close()

	entries := []domain.AccrualBatchEntry{}
	for rows.Next() {
		var m models.AccrualBatchEntry
		if err := rows.Scan(&m.BatchID, &m.EntryID, &m.LoanID, &m.AccrualDate); err != nil {
			return nil, fmt.Errorf("failed to scan accrual batch entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainAccrualBatchEntry(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating accrual batch entry rows: %w", rows.Err())
	}

	return entries, nil
}

// UpdateBatchStatus finalizes a batch run with its outcome, entry count and
// optional failure detail.
func (r *PgxAccrualRepository) UpdateBatchStatus(ctx context.Context, batchID string, status domain.AccrualBatchStatus, entryCount int, failureDetail *string) error {
	query := `
		UPDATE accrual_batches
		SET status = $2, entry_count = $3, failure_detail = $4, last_updated_at = $5
		WHERE batch_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, batchID, string(status), entryCount, mapping.NullStringFromPtr(failureDetail), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update status of batch %s: %w", batchID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
