package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	"github.com/lendaro/loanledger/internal/models"
	"github.com/lendaro/loanledger/internal/utils/mapping"
)

type PgxAnomalyRepository struct {
	BaseRepository
}

// newPgxAnomalyRepository creates a new repository for anomaly scan data.
func newPgxAnomalyRepository(pool *pgxpool.Pool) portsrepo.AnomalyRepositoryWithTx {
	return &PgxAnomalyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAnomalyRepository implements portsrepo.AnomalyRepositoryWithTx
var _ portsrepo.AnomalyRepositoryWithTx = (*PgxAnomalyRepository)(nil)

const selectAnomalyResultFields = `
	result_id, entry_id, anomaly_type, score, detail, detected_at`

func scanAnomalyResult(row pgx.Row) (models.AnomalyResult, error) {
	var m models.AnomalyResult
	err := row.Scan(
		&m.ResultID,
		&m.EntryID,
		&m.AnomalyType,
		&m.Score,
		&m.Detail,
		&m.DetectedAt,
	)
	return m, err
}

// SaveResults persists scan results and marks every examined entry in one
// transaction. The marker rows are what keep clean entries from being
// rescanned; ON CONFLICT makes a replayed scan harmless.
func (r *PgxAnomalyRepository) SaveResults(ctx context.Context, entryIDs []string, results []domain.AnomalyResult) error {
	if len(entryIDs) == 0 && len(results) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	batch := &pgx.Batch{}

	markQuery := `
		INSERT INTO anomaly_scans (entry_id, scanned_at)
		VALUES ($1, $2)
		ON CONFLICT (entry_id) DO NOTHING;
	`
	now := time.Now().UTC()
	for _, entryID := range entryIDs {
		batch.Queue(markQuery, entryID, now)
	}

	resultQuery := `
		INSERT INTO anomaly_results (` + selectAnomalyResultFields + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i := range results {
		m := mapping.ToModelAnomalyResult(results[i])
		batch.Queue(resultQuery, m.ResultID, m.EntryID, m.AnomalyType, m.Score, m.Detail, m.DetectedAt)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save anomaly scan results: %w", err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindResultsByEntryID retrieves anomaly results for one entry.
func (r *PgxAnomalyRepository) FindResultsByEntryID(ctx context.Context, entryID string) ([]domain.AnomalyResult, error) {
	query := `
		SELECT ` + selectAnomalyResultFields + `
		FROM anomaly_results
		WHERE entry_id = $1
		ORDER BY detected_at DESC, anomaly_type;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly results for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	modelResults := []models.AnomalyResult{}
	for rows.Next() {
		m, err := scanAnomalyResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan anomaly result row: %w", err)
		}
		modelResults = append(modelResults, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating anomaly result rows: %w", rows.Err())
	}

	return mapping.ToDomainAnomalyResultSlice(modelResults), nil
}

// ListResults retrieves a paginated list of results, newest first, optionally
// filtered by anomaly type.
func (r *PgxAnomalyRepository) ListResults(ctx context.Context, anomalyType *domain.AnomalyType, limit int, offset int) ([]domain.AnomalyResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + selectAnomalyResultFields + `
		FROM anomaly_results`
	args := []interface{}{}
	argPos := 1

	if anomalyType != nil && *anomalyType != "" {
		query += fmt.Sprintf(" WHERE anomaly_type = $%d", argPos)
		args = append(args, string(*anomalyType))
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY detected_at DESC, result_id LIMIT $%d OFFSET $%d;", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly results: %w", err)
	}
	defer rows.Close()

	modelResults := []models.AnomalyResult{}
	for rows.Next() {
		m, err := scanAnomalyResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan anomaly result row: %w", err)
		}
		modelResults = append(modelResults, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating anomaly result rows: %w", rows.Err())
	}

	return mapping.ToDomainAnomalyResultSlice(modelResults), nil
}

// FindUnscoredEntryIDs retrieves ids of POSTED entries no scan has examined
// yet, oldest posting first.
func (r *PgxAnomalyRepository) FindUnscoredEntryIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: scan limit must be positive", apperrors.ErrValidation)
	}

	query := `
		SELECT e.entry_id
		FROM journal_entries e
		WHERE e.status = 'POSTED'
			AND NOT EXISTS (SELECT 1 FROM anomaly_scans s WHERE s.entry_id = e.entry_id)
		ORDER BY e.posted_at, e.entry_id
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unscored entries: %w", err)
	}
	defer rows.Close()

	entryIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unscored entry id: %w", err)
		}
		entryIDs = append(entryIDs, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating unscored entry ids: %w", rows.Err())
	}

	return entryIDs, nil
}

// AccountAmountHistory retrieves the most recent posted line amounts for an
// account, newest first. Exactly one of debit/credit is non-zero on a stored
// line, so their sum is the line amount.
func (r *PgxAnomalyRepository) AccountAmountHistory(ctx context.Context, accountID string, limit int) ([]domain.AmountSample, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT l.debit + l.credit AS amount, e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.status = 'POSTED'
		ORDER BY e.entry_date DESC, l.created_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query amount history for account %s: %w", accountID, err)
	}
	defer rows.Close()

	samples := []domain.AmountSample{}
	for rows.Next() {
		var s domain.AmountSample
		if err := rows.Scan(&s.Amount, &s.EntryDate); err != nil {
			return nil, fmt.Errorf("failed to scan amount sample row: %w", err)
		}
		samples = append(samples, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating amount sample rows: %w", rows.Err())
	}

	return samples, nil
}
