package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/middleware"
	"github.com/lendaro/loanledger/internal/utils/accounting"
)

var (
	ErrUnbalancedEntry    = errors.New("entry lines do not balance per currency")
	ErrEntryMinLines      = errors.New("entry must have at least two lines")
	ErrEntryMinAccounts   = errors.New("entry must affect at least two different accounts")
	ErrInvalidAccount     = errors.New("account not found or not postable")
	ErrCurrencyMismatch   = errors.New("line currency does not match account currency")
	ErrDescriptionMissing = errors.New("entry description is required")
)

// entryService implements the posting engine: drafts, postings and voids.
type entryService struct {
	BaseService
	entryRepo  portsrepo.EntryRepositoryWithTx
	accountSvc portssvc.AccountSvcFacade
	periodSvc  portssvc.PeriodSvcFacade
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo portsrepo.EntryRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, periodSvc portssvc.PeriodSvcFacade) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:  entryRepo,
		accountSvc: accountSvc,
		periodSvc:  periodSvc,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// validateAccounts checks that every line posts to an active leaf account in
// the line's currency and returns the account types keyed by account id.
func (s *entryService) validateAccounts(ctx context.Context, lines []domain.JournalLine) (map[string]domain.AccountType, error) {
	accountIDs := make([]string, 0, len(lines))
	for i := range lines {
		accountIDs = append(accountIDs, lines[i].AccountID)
	}
	uniqueIDs := uniqueStrings(accountIDs)
	if len(uniqueIDs) < 2 {
		return nil, ErrEntryMinAccounts
	}

	accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, uniqueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	tree, err := s.accountSvc.GetAccountTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account tree: %w", err)
	}

	accountTypes := make(map[string]domain.AccountType, len(uniqueIDs))
	for _, id := range uniqueIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: account %s does not exist", ErrInvalidAccount, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", ErrInvalidAccount, id)
		}
		if !tree.IsLeaf(id) {
			return nil, fmt.Errorf("%w: account %s is a summary account", ErrInvalidAccount, id)
		}
		accountTypes[id] = acc.AccountType
	}
	for i := range lines {
		acc := accountsMap[lines[i].AccountID]
		if acc.CurrencyCode != lines[i].CurrencyCode {
			return nil, fmt.Errorf("%w: account %s is %s, line is %s",
				ErrCurrencyMismatch, acc.AccountID, acc.CurrencyCode, lines[i].CurrencyCode)
		}
	}
	return accountTypes, nil
}

// CreateDraft creates a new DRAFT entry after structural validation. Nothing
// is locked and no balances move until the entry is posted.
func (s *entryService) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx)

	if len(req.Lines) < 2 {
		return nil, ErrEntryMinLines
	}
	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}

	// Resolve the period: explicit id wins, otherwise the open period
	// containing the entry date.
	var period *domain.AccountingPeriod
	var err error
	if req.PeriodID != nil && *req.PeriodID != "" {
		period, err = s.periodSvc.GetPeriodByID(ctx, *req.PeriodID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve period %s: %w", *req.PeriodID, err)
		}
		if !period.IsOpen() {
			return nil, fmt.Errorf("%w: period %s", apperrors.ErrClosedPeriod, period.PeriodID)
		}
		if !period.Contains(req.EntryDate) {
			return nil, fmt.Errorf("%w: entry date %s outside period %s", apperrors.ErrValidation,
				req.EntryDate.Format("2006-01-02"), period.Name)
		}
	} else {
		period, err = s.periodSvc.EnsureOpenFor(ctx, req.EntryDate)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    lineReq.AccountID,
			Debit:        lineReq.Debit,
			Credit:       lineReq.Credit,
			CurrencyCode: lineReq.CurrencyCode,
			Memo:         lineReq.Memo,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnbalancedEntry, err)
	}
	if _, err := s.validateAccounts(ctx, lines); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:       entryID,
		PeriodID:      period.PeriodID,
		EntryDate:     req.EntryDate,
		Description:   req.Description,
		CurrencyCode:  req.CurrencyCode,
		Status:        domain.EntryDraft,
		SourceEventID: req.SourceEventID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
		Lines: lines,
	}

	if err := s.entryRepo.SaveDraftEntry(ctx, entry); err != nil {
		logger.Error("Failed to save draft entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save draft entry: %w", err)
	}

	logger.Info("Draft entry created", slog.String("entry_id", entryID), slog.String("period_id", period.PeriodID))
	return &entry, nil
}

// Post transitions a DRAFT entry to POSTED. Validation re-runs against the
// current chart of accounts, then the repository performs the locking, the
// sequence claim and the balance updates in a single transaction.
func (s *entryService) Post(ctx context.Context, entryID string, postingUserID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if !entry.IsDraft() {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, entry.Status)
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnbalancedEntry, err)
	}

	accountTypes, err := s.validateAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}

	posted, err := s.entryRepo.PostEntry(ctx, entryID, postingUserID, time.Now().UTC(), balanceChanges)
	if err != nil {
		logger.Error("Failed to post entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	middleware.EntriesPostedTotal.Inc()
	logger.Info("Entry posted",
		slog.String("entry_id", entryID),
		slog.Int64("sequence_no", derefSeq(posted.SequenceNo)))
	return posted, nil
}

// PostDraftDirect creates a draft and immediately posts it. The mapping and
// accrual callers use this so their entries never linger in draft.
func (s *entryService) PostDraftDirect(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	draft, err := s.CreateDraft(ctx, req, userID)
	if err != nil {
		return nil, err
	}
	return s.Post(ctx, draft.EntryID, userID)
}

// Void offsets a POSTED entry with a new entry whose sides are swapped,
// marks the original VOID and links the pair. The original stays immutable;
// correction is always a new posting.
func (s *entryService) Void(ctx context.Context, entryID string, userID string, req dto.VoidEntryRequest) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx)

	original, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if !original.IsPosted() {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotPosted, entryID, original.Status)
	}
	if original.VoidedEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s is itself a voiding entry", apperrors.ErrConflict, entryID)
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}

	voidDate := time.Now().UTC()
	if req.VoidDate != nil {
		voidDate = *req.VoidDate
	}
	period, err := s.periodSvc.EnsureOpenFor(ctx, voidDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	voidingID := uuid.NewString()

	voidingLines := make([]domain.JournalLine, len(originalLines))
	for i, orig := range originalLines {
		voidingLines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      voidingID,
			AccountID:    orig.AccountID,
			Debit:        orig.Credit,
			Credit:       orig.Debit,
			CurrencyCode: orig.CurrencyCode,
			Memo:         orig.Memo,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	accountTypes, err := s.validateAccounts(ctx, voidingLines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(voidingLines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance changes: %w", err)
	}

	voiding := domain.JournalEntry{
		EntryID:       voidingID,
		PeriodID:      period.PeriodID,
		EntryDate:     voidDate,
		Description:   fmt.Sprintf("Void of %s: %s", original.EntryID, req.Reason),
		CurrencyCode:  original.CurrencyCode,
		Status:        domain.EntryDraft,
		VoidedEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
		Lines: voidingLines,
	}

	posted, err := s.entryRepo.SaveVoidingEntry(ctx, voiding, original.EntryID, balanceChanges)
	if err != nil {
		logger.Error("Failed to void entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	middleware.EntriesVoidedTotal.Inc()
	logger.Info("Entry voided",
		slog.String("entry_id", entryID),
		slog.String("voiding_entry_id", posted.EntryID))
	return posted, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries.
func (s *entryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := s.GetLogger(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var status *domain.EntryStatus
	if params.Status != nil && *params.Status != "" {
		st := domain.EntryStatus(*params.Status)
		switch st {
		case domain.EntryDraft, domain.EntryPosted, domain.EntryVoid:
			status = &st
		default:
			return nil, fmt.Errorf("%w: unknown entry status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, params.PeriodID, status, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i])
	}
	return &dto.ListEntriesResponse{
		Entries:   responses,
		NextToken: nextToken,
	}, nil
}

// ListLinesByAccount retrieves posted lines for one account, newest first.
func (s *entryService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if _, err := s.accountSvc.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	lines, nextToken, err := s.entryRepo.ListLinesByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines: %w", err)
	}
	return &dto.ListLinesResponse{
		Lines:     dto.ToEntryLineResponses(lines),
		NextToken: nextToken,
	}, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}

func derefSeq(seq *int64) int64 {
	if seq == nil {
		return 0
	}
	return *seq
}
