package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	"github.com/lendaro/loanledger/internal/models"
	"github.com/lendaro/loanledger/internal/utils/accounting"
	"github.com/lendaro/loanledger/internal/utils/mapping"
	"github.com/lendaro/loanledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxEntryRepository creates a new repository for journal entry data.
// The account repository is needed for locking and balance updates during posting.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryWithTx
var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

const selectEntryFields = `
	entry_id, period_id, entry_date, description, currency_code, status, sequence_no,
	source_event_id, posted_at, posted_by, voiding_entry_id, voided_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const selectLineFields = `
	line_id, entry_id, account_id, debit, credit, currency_code, memo,
	created_at, created_by, last_updated_at, last_updated_by, running_balance`

const insertLineQuery = `
	INSERT INTO journal_lines (line_id, entry_id, account_id, debit, credit, currency_code, memo, created_at, created_by, last_updated_at, last_updated_by, running_balance)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.PeriodID,
		&m.EntryDate,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&m.SequenceNo,
		&m.SourceEventID,
		&m.PostedAt,
		&m.PostedBy,
		&m.VoidingEntryID,
		&m.VoidedEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.Debit,
		&m.Credit,
		&m.CurrencyCode,
		&m.Memo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.RunningBalance,
	)
	return m, err
}

// SaveDraftEntry persists a new DRAFT entry and its lines in one transaction.
// No period gate, no sequence number and no balance movement until posting.
func (r *PgxEntryRepository) SaveDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	modelEntry := mapping.ToModelJournalEntry(entry)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	insertEntryQuery := `
		INSERT INTO journal_entries (` + selectEntryFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, insertEntryQuery,
		modelEntry.EntryID,
		modelEntry.PeriodID,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.CurrencyCode,
		modelEntry.Status,
		modelEntry.SequenceNo,
		modelEntry.SourceEventID,
		modelEntry.PostedAt,
		modelEntry.PostedBy,
		modelEntry.VoidingEntryID,
		modelEntry.VoidedEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft entry %s: %w", modelEntry.EntryID, err)
	}

	if err := insertLinesInTx(ctx, tx, entry.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// insertLinesInTx batch inserts journal lines within a transaction.
func insertLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range lines {
		modelLine := mapping.ToModelJournalLine(lines[i])
		batch.Queue(insertLineQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.AccountID,
			modelLine.Debit,
			modelLine.Credit,
			modelLine.CurrencyCode,
			modelLine.Memo,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
			modelLine.RunningBalance,
		)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal line %s: %w", lines[i].LineID, err)
		}
	}
	return nil
}

// UpdateDraftEntry replaces the header fields and lines of a DRAFT entry.
// Posted and void entries are immutable so the status guard sits in the
// UPDATE itself, re-checked under the row lock.
func (r *PgxEntryRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	modelEntry := mapping.ToModelJournalEntry(entry)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	updateQuery := `
		UPDATE journal_entries
		SET period_id = $2, entry_date = $3, description = $4, currency_code = $5, source_event_id = $6, last_updated_at = $7, last_updated_by = $8
		WHERE entry_id = $1 AND status = 'DRAFT';
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		modelEntry.EntryID,
		modelEntry.PeriodID,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.CurrencyCode,
		modelEntry.SourceEventID,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft entry %s: %w", modelEntry.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the entry doesn't exist or it is no longer a draft.
		existing, findErr := r.FindEntryByID(ctx, modelEntry.EntryID)
		if findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, existing.EntryID, existing.Status)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, modelEntry.EntryID); err != nil {
		return fmt.Errorf("failed to clear lines of draft entry %s: %w", modelEntry.EntryID, err)
	}
	if err := insertLinesInTx(ctx, tx, entry.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry header by its ID. Lines are loaded separately.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + selectEntryFields + `
		FROM journal_entries
		WHERE entry_id = $1;
	`
	modelEntry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	domainEntry := mapping.ToDomainJournalEntry(modelEntry)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves all lines of one entry in insertion order.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + selectLineFields + `
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		lines = append(lines, mapping.ToDomainJournalLine(modelLine))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", rows.Err())
	}

	return lines, nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
// Requested entries with no lines map to an empty slice, not a missing key.
func (r *PgxEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	result := make(map[string][]domain.JournalLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}
	for _, id := range entryIDs {
		result[id] = []domain.JournalLine{}
	}

	query := `
		SELECT ` + selectLineFields + `
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		result[modelLine.EntryID] = append(result[modelLine.EntryID], mapping.ToDomainJournalLine(modelLine))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", rows.Err())
	}

	return result, nil
}

// ListEntries retrieves a page of entries newest first, optionally filtered by
// period and status. Keyset pagination over (entry_date, created_at) keeps
// pages stable while new entries arrive.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, periodID *string, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1 // Fetch one extra row to detect whether a next page exists

	query := `
		SELECT ` + selectEntryFields + `
		FROM journal_entries
		WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if periodID != nil && *periodID != "" {
		query += fmt.Sprintf(" AND period_id = $%d", argPos)
		args = append(args, *periodID)
		argPos++
	}
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, string(*status))
		argPos++
	}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token: %v", apperrors.ErrValidation, err)
		}
		query += fmt.Sprintf(" AND (entry_date, created_at) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, entryDate, createdAt)
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY entry_date DESC, created_at DESC LIMIT $%d;", argPos)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	modelEntries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", rows.Err())
	}

	var newNextToken *string
	if len(modelEntries) == fetchLimit {
		lastEntry := modelEntries[limit-1]
		token := pagination.EncodeToken(lastEntry.EntryDate, lastEntry.CreatedAt)
		newNextToken = &token
		modelEntries = modelEntries[:limit]
	}

	entries := make([]domain.JournalEntry, len(modelEntries))
	for i := range modelEntries {
		entries[i] = mapping.ToDomainJournalEntry(modelEntries[i])
	}

	return entries, newNextToken, nil
}

// ListLinesByAccountID retrieves a page of posted lines for one account,
// newest first, with the same keyset scheme as ListEntries. Lines of VOID
// entries stay in: the original and its offset are both part of the account's
// history and the running balance chain runs through both.
func (r *PgxEntryRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.debit, l.credit, l.currency_code, l.memo,
			l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, l.running_balance,
			e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.status IN ('POSTED', 'VOID')`
	args := []interface{}{accountID}
	argPos := 2

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token: %v", apperrors.ErrValidation, err)
		}
		query += fmt.Sprintf(" AND (e.entry_date, l.created_at) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, entryDate, createdAt)
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY e.entry_date DESC, l.created_at DESC LIMIT $%d;", argPos)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line      models.JournalLine
		entryDate time.Time
	}
	fetched := []lineWithDate{}
	for rows.Next() {
		var lwd lineWithDate
		err := rows.Scan(
			&lwd.line.LineID,
			&lwd.line.EntryID,
			&lwd.line.AccountID,
			&lwd.line.Debit,
			&lwd.line.Credit,
			&lwd.line.CurrencyCode,
			&lwd.line.Memo,
			&lwd.line.CreatedAt,
			&lwd.line.CreatedBy,
			&lwd.line.LastUpdatedAt,
			&lwd.line.LastUpdatedBy,
			&lwd.line.RunningBalance,
			&lwd.entryDate,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan account line row: %w", err)
		}
		fetched = append(fetched, lwd)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating account line rows: %w", rows.Err())
	}

	var newNextToken *string
	if len(fetched) == fetchLimit {
		last := fetched[limit-1]
		token := pagination.EncodeToken(last.entryDate, last.line.CreatedAt)
		newNextToken = &token
		fetched = fetched[:limit]
	}

	lines := make([]domain.JournalLine, len(fetched))
	for i := range fetched {
		lines[i] = mapping.ToDomainJournalLine(fetched[i].line)
	}

	return lines, newNextToken, nil
}

// lockPeriodAndClaimSequence locks the period row, verifies it is open and
// contains the entry date, then claims the next sequence number. The claim
// happens under the row lock so concurrent postings in the same period
// serialize and never share a number.
func lockPeriodAndClaimSequence(ctx context.Context, tx pgx.Tx, periodID string, entryDate time.Time) (int64, error) {
	query := `
		SELECT period_id, name, start_date, end_date, status, closed_at, closed_by, next_sequence_no,
			created_at, created_by, last_updated_at, last_updated_by
		FROM accounting_periods
		WHERE period_id = $1
		FOR UPDATE;
	`
	m, err := scanPeriod(tx.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
		}
		return 0, fmt.Errorf("failed to lock period %s: %w", periodID, err)
	}

	period := mapping.ToDomainAccountingPeriod(m)
	if !period.IsOpen() {
		return 0, fmt.Errorf("%w: period %s", apperrors.ErrClosedPeriod, periodID)
	}
	if !period.Contains(entryDate) {
		return 0, fmt.Errorf("%w: entry date %s outside period %s", apperrors.ErrValidation,
			entryDate.Format("2006-01-02"), period.Name)
	}

	seq := m.NextSequenceNo
	if _, err := tx.Exec(ctx, `UPDATE accounting_periods SET next_sequence_no = $2 WHERE period_id = $1;`, periodID, seq+1); err != nil {
		return 0, fmt.Errorf("failed to claim sequence number for period %s: %w", periodID, err)
	}
	return seq, nil
}

// verifyPostableAccounts re-checks, under the account row locks, that every
// account is active and has no children. The service validated this already
// but the chart can change between validation and posting.
func verifyPostableAccounts(ctx context.Context, tx pgx.Tx, accounts map[string]domain.Account, accountIDs []string) error {
	for id, acc := range accounts {
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
	}

	query := `SELECT DISTINCT parent_account_id FROM accounts WHERE parent_account_id = ANY($1);`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to check for summary accounts: %w", err)
	}
	defer rows.Close()

	nonLeaf := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan summary account check: %w", err)
		}
		nonLeaf = append(nonLeaf, id)
	}
	if rows.Err() != nil {
		return fmt.Errorf("error iterating summary account check: %w", rows.Err())
	}
	if len(nonLeaf) > 0 {
		return fmt.Errorf("%w: summary accounts cannot be posted to: %v", apperrors.ErrValidation, nonLeaf)
	}
	return nil
}

// applyRunningBalances stamps each line with the account balance after the
// line, walking the lines in order from the pre-update balances of the locked
// accounts. Updated rows are written back in one batch.
func applyRunningBalances(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine, accounts map[string]domain.Account, userID string, now time.Time) error {
	running := make(map[string]decimal.Decimal, len(accounts))
	for id, acc := range accounts {
		running[id] = acc.Balance
	}

	updateQuery := `
		UPDATE journal_lines
		SET running_balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE line_id = $1;
	`
	batch := &pgx.Batch{}
	for i := range lines {
		acc := accounts[lines[i].AccountID]
		signed, err := accounting.SignedAmount(lines[i], acc.AccountType)
		if err != nil {
			return fmt.Errorf("failed to sign line %s: %w", lines[i].LineID, err)
		}
		next := running[lines[i].AccountID].Add(signed)
		running[lines[i].AccountID] = next
		batch.Queue(updateQuery, lines[i].LineID, next, now, userID)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		cmdTag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("failed to stamp running balance on line %s: %w", lines[i].LineID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: line %s disappeared during posting", apperrors.ErrNotFound, lines[i].LineID)
		}
	}
	return nil
}

// PostEntry transitions a DRAFT entry to POSTED in one transaction. Locking
// order is entry, period, accounts; every posting takes locks in this order
// so concurrent postings cannot deadlock.
func (r *PgxEntryRepository) PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	lockQuery := `
		SELECT ` + selectEntryFields + `
		FROM journal_entries
		WHERE entry_id = $1
		FOR UPDATE;
	`
	modelEntry, err := scanEntry(tx.QueryRow(ctx, lockQuery, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock entry %s: %w", entryID, err)
	}
	if models.EntryStatus(modelEntry.Status) != models.EntryDraft {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, modelEntry.Status)
	}

	seq, err := lockPeriodAndClaimSequence(ctx, tx, modelEntry.PeriodID, modelEntry.EntryDate)
	if err != nil {
		return nil, err
	}

	lines, err := findLinesInTx(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}
	if err := verifyPostableAccounts(ctx, tx, lockedAccounts, accountIDs); err != nil {
		return nil, err
	}

	// Running balances derive from the pre-update balances of the locked rows.
	if err := applyRunningBalances(ctx, tx, lines, lockedAccounts, postedBy, postedAt); err != nil {
		return nil, err
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, postedBy, postedAt); err != nil {
		return nil, err
	}

	postQuery := `
		UPDATE journal_entries
		SET status = 'POSTED', sequence_no = $2, posted_at = $3, posted_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, postQuery, entryID, seq, postedAt, postedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry %s posted: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: entry %s disappeared during posting", apperrors.ErrNotFound, entryID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	posted := mapping.ToDomainJournalEntry(modelEntry)
	posted.Status = domain.EntryPosted
	posted.SequenceNo = &seq
	posted.PostedAt = &postedAt
	posted.PostedBy = &postedBy
	posted.LastUpdatedAt = postedAt
	posted.LastUpdatedBy = postedBy
	posted.Lines = lines
	return &posted, nil
}

// findLinesInTx loads the lines of an entry inside a transaction, in the same
// order running balances are applied.
func findLinesInTx(ctx context.Context, tx pgx.Tx, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + selectLineFields + `
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY created_at, line_id;
	`
	rows, err := tx.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		modelLine, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		lines = append(lines, mapping.ToDomainJournalLine(modelLine))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", rows.Err())
	}
	return lines, nil
}

// SaveVoidingEntry posts the offsetting entry and marks the original VOID in
// one transaction. The voiding entry goes through the same gates as a normal
// posting: open period, date in range, claimed sequence, locked accounts.
func (r *PgxEntryRepository) SaveVoidingEntry(ctx context.Context, voiding domain.JournalEntry, voidedEntryID string, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	postedAt := voiding.CreatedAt
	postedBy := voiding.CreatedBy

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	lockQuery := `
		SELECT ` + selectEntryFields + `
		FROM journal_entries
		WHERE entry_id = $1
		FOR UPDATE;
	`
	original, err := scanEntry(tx.QueryRow(ctx, lockQuery, voidedEntryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, voidedEntryID)
		}
		return nil, fmt.Errorf("failed to lock entry %s: %w", voidedEntryID, err)
	}
	if models.EntryStatus(original.Status) != models.EntryPosted {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotPosted, voidedEntryID, original.Status)
	}
	if original.VoidingEntryID.Valid {
		return nil, fmt.Errorf("%w: entry %s is already voided by %s", apperrors.ErrConflict, voidedEntryID, original.VoidingEntryID.String)
	}

	seq, err := lockPeriodAndClaimSequence(ctx, tx, voiding.PeriodID, voiding.EntryDate)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}
	if err := verifyPostableAccounts(ctx, tx, lockedAccounts, accountIDs); err != nil {
		return nil, err
	}

	// Insert the voiding entry already POSTED; it never exists as a draft.
	voiding.Status = domain.EntryPosted
	voiding.SequenceNo = &seq
	voiding.PostedAt = &postedAt
	voiding.PostedBy = &postedBy
	voiding.VoidedEntryID = &voidedEntryID
	modelVoiding := mapping.ToModelJournalEntry(voiding)

	insertQuery := `
		INSERT INTO journal_entries (` + selectEntryFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, insertQuery,
		modelVoiding.EntryID,
		modelVoiding.PeriodID,
		modelVoiding.EntryDate,
		modelVoiding.Description,
		modelVoiding.CurrencyCode,
		modelVoiding.Status,
		modelVoiding.SequenceNo,
		modelVoiding.SourceEventID,
		modelVoiding.PostedAt,
		modelVoiding.PostedBy,
		modelVoiding.VoidingEntryID,
		modelVoiding.VoidedEntryID,
		modelVoiding.CreatedAt,
		modelVoiding.CreatedBy,
		modelVoiding.LastUpdatedAt,
		modelVoiding.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert voiding entry %s: %w", modelVoiding.EntryID, err)
	}

	// Stamp running balances on the lines before inserting them, from the
	// pre-update balances of the locked accounts.
	running := make(map[string]decimal.Decimal, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		running[id] = acc.Balance
	}
	for i := range voiding.Lines {
		acc := lockedAccounts[voiding.Lines[i].AccountID]
		signed, err := accounting.SignedAmount(voiding.Lines[i], acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("failed to sign line %s: %w", voiding.Lines[i].LineID, err)
		}
		next := running[voiding.Lines[i].AccountID].Add(signed)
		running[voiding.Lines[i].AccountID] = next
		voiding.Lines[i].RunningBalance = next
	}
	if err := insertLinesInTx(ctx, tx, voiding.Lines); err != nil {
		return nil, err
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, postedBy, postedAt); err != nil {
		return nil, err
	}

	voidQuery := `
		UPDATE journal_entries
		SET status = 'VOID', voiding_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = 'POSTED';
	`
	cmdTag, err := tx.Exec(ctx, voidQuery, voidedEntryID, voiding.EntryID, postedAt, postedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry %s void: %w", voidedEntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: entry %s changed during void", apperrors.ErrConflict, voidedEntryID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return &voiding, nil
}
