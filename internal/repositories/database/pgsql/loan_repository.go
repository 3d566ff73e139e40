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

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan and loan event data.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryWithTx {
	return &PgxLoanRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryWithTx
var _ portsrepo.LoanRepositoryWithTx = (*PgxLoanRepository)(nil)

const selectLoanFields = `
	loan_id, reference_code, borrower_name, principal, outstanding_principal, annual_rate,
	day_count_basis, currency_code, status, disbursed_at,
	created_at, created_by, last_updated_at, last_updated_by`

const selectLoanEventFields = `
	event_id, loan_id, event_type, amount, currency_code, occurred_at, attributes, entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanLoan(row pgx.Row) (models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID,
		&m.ReferenceCode,
		&m.BorrowerName,
		&m.Principal,
		&m.OutstandingPrincipal,
		&m.AnnualRate,
		&m.DayCountBasis,
		&m.CurrencyCode,
		&m.Status,
		&m.DisbursedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLoanEvent(row pgx.Row) (models.LoanEvent, error) {
	var m models.LoanEvent
	err := row.Scan(
		&m.EventID,
		&m.LoanID,
		&m.EventType,
		&m.Amount,
		&m.CurrencyCode,
		&m.OccurredAt,
		&m.Attributes,
		&m.EntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveLoan inserts a new loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)

	query := `
		INSERT INTO loans (` + selectLoanFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LoanID,
		m.ReferenceCode,
		m.BorrowerName,
		m.Principal,
		m.OutstandingPrincipal,
		m.AnnualRate,
		m.DayCountBasis,
		m.CurrencyCode,
		m.Status,
		m.DisbursedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: loan with reference code %s already exists", apperrors.ErrDuplicate, m.ReferenceCode)
		}
		return fmt.Errorf("failed to save loan %s: %w", m.LoanID, err)
	}
	return nil
}

// UpdateLoan updates an existing loan's mutable fields.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)

	query := `
		UPDATE loans
		SET borrower_name = $2, outstanding_principal = $3, annual_rate = $4, status = $5, disbursed_at = $6, last_updated_at = $7, last_updated_by = $8
		WHERE loan_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.LoanID,
		m.BorrowerName,
		m.OutstandingPrincipal,
		m.AnnualRate,
		m.Status,
		m.DisbursedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan %s: %w", m.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT ` + selectLoanFields + `
		FROM loans
		WHERE loan_id = $1;
	`
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by ID %s: %w", loanID, err)
	}

	loan := mapping.ToDomainLoan(m)
	return &loan, nil
}

// FindLoanByReferenceCode retrieves a loan by its human-facing code.
func (r *PgxLoanRepository) FindLoanByReferenceCode(ctx context.Context, referenceCode string) (*domain.Loan, error) {
	query := `
		SELECT ` + selectLoanFields + `
		FROM loans
		WHERE reference_code = $1;
	`
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, referenceCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by reference code %s: %w", referenceCode, err)
	}

	loan := mapping.ToDomainLoan(m)
	return &loan, nil
}

// ListLoans retrieves a paginated list of loans.
func (r *PgxLoanRepository) ListLoans(ctx context.Context, limit int, offset int) ([]domain.Loan, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + selectLoanFields + `
		FROM loans
		ORDER BY reference_code
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	modelLoans := []models.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		modelLoans = append(modelLoans, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}

	return mapping.ToDomainLoanSlice(modelLoans), nil
}

// FindAccruingLoans retrieves loans that earn interest: ACTIVE with positive
// outstanding principal.
func (r *PgxLoanRepository) FindAccruingLoans(ctx context.Context) ([]domain.Loan, error) {
	query := `
		SELECT ` + selectLoanFields + `
		FROM loans
		WHERE status = 'ACTIVE' AND outstanding_principal > 0
		ORDER BY reference_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accruing loans: %w", err)
	}
	defer rows.Close()

	modelLoans := []models.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		modelLoans = append(modelLoans, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}

	return mapping.ToDomainLoanSlice(modelLoans), nil
}

// SaveEvent inserts a new loan lifecycle event. Attributes go to a jsonb
// column; pgx handles the map encoding.
func (r *PgxLoanRepository) SaveEvent(ctx context.Context, event domain.LoanEvent) error {
	m := mapping.ToModelLoanEvent(event)

	query := `
		INSERT INTO loan_events (` + selectLoanEventFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.EventID,
		m.LoanID,
		m.EventType,
		m.Amount,
		m.CurrencyCode,
		m.OccurredAt,
		m.Attributes,
		m.EntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save loan event %s: %w", m.EventID, err)
	}
	return nil
}

// SetEventEntryID records the journal entry an event was posted as.
func (r *PgxLoanRepository) SetEventEntryID(ctx context.Context, eventID string, entryID string) error {
	query := `
		UPDATE loan_events
		SET entry_id = $2, last_updated_at = $3
		WHERE event_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, eventID, entryID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to link event %s to entry %s: %w", eventID, entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindEventByID retrieves a loan event by its ID.
func (r *PgxLoanRepository) FindEventByID(ctx context.Context, eventID string) (*domain.LoanEvent, error) {
	query := `
		SELECT ` + selectLoanEventFields + `
		FROM loan_events
		WHERE event_id = $1;
	`
	m, err := scanLoanEvent(r.Pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan event by ID %s: %w", eventID, err)
	}

	event := mapping.ToDomainLoanEvent(m)
	return &event, nil
}

// FindEventsByLoanID retrieves all events for a loan ordered by occurrence.
func (r *PgxLoanRepository) FindEventsByLoanID(ctx context.Context, loanID string) ([]domain.LoanEvent, error) {
	query := `
		SELECT ` + selectLoanEventFields + `
		FROM loan_events
		WHERE loan_id = $1
		ORDER BY occurred_at, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	modelEvents := []models.LoanEvent{}
	for rows.Next() {
		m, err := scanLoanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan event row: %w", err)
		}
		modelEvents = append(modelEvents, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan event rows: %w", rows.Err())
	}

	return mapping.ToDomainLoanEventSlice(modelEvents), nil
}
