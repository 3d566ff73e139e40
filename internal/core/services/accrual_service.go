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
)

// accrualService posts daily interest accruals for active loans over a date
// range. A range can complete only once; interrupted runs stay INCOMPLETE
// and are resumed explicitly, replaying only the loan-days that never
// committed.
type accrualService struct {
	BaseService
	accrualRepo portsrepo.AccrualRepositoryWithTx
	loanRepo    portsrepo.LoanRepositoryFacade
	entrySvc    portssvc.EntrySvcFacade
	accountSvc  portssvc.AccountSvcFacade

	receivableCode string
	incomeCode     string
}

// NewAccrualService creates a new AccrualService. The account codes name the
// interest receivable and interest income accounts every accrual entry
// debits and credits.
func NewAccrualService(
	accrualRepo portsrepo.AccrualRepositoryWithTx,
	loanRepo portsrepo.LoanRepositoryFacade,
	entrySvc portssvc.EntrySvcFacade,
	accountSvc portssvc.AccountSvcFacade,
	receivableCode string,
	incomeCode string,
) portssvc.AccrualSvcFacade {
	return &accrualService{
		accrualRepo:    accrualRepo,
		loanRepo:       loanRepo,
		entrySvc:       entrySvc,
		accountSvc:     accountSvc,
		receivableCode: receivableCode,
		incomeCode:     incomeCode,
	}
}

var _ portssvc.AccrualSvcFacade = (*accrualService)(nil)

// accrualAccounts resolves the configured accrual account codes.
func (s *accrualService) accrualAccounts(ctx context.Context) (receivable, income *domain.Account, err error) {
	receivable, err = s.accountSvc.GetAccountByCode(ctx, s.receivableCode)
	if err != nil {
		return nil, nil, fmt.Errorf("interest receivable account %q: %w", s.receivableCode, err)
	}
	income, err = s.accountSvc.GetAccountByCode(ctx, s.incomeCode)
	if err != nil {
		return nil, nil, fmt.Errorf("interest income account %q: %w", s.incomeCode, err)
	}
	return receivable, income, nil
}

// truncateToDay normalizes a timestamp to UTC midnight. Accrual works in
// whole days.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func loanDayKey(loanID string, day time.Time) string {
	return loanID + "|" + day.Format("2006-01-02")
}

// Run accrues daily interest for every accruing loan over [start, end).
func (s *accrualService) Run(ctx context.Context, start, end time.Time, userID string) (*domain.AccrualBatch, error) {
	logger := s.GetLogger(ctx)

	start = truncateToDay(start)
	end = truncateToDay(end)
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}

	receivable, income, err := s.accrualAccounts(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batch := domain.AccrualBatch{
		BatchID:   uuid.NewString(),
		StartDate: start,
		EndDate:   end,
		Status:    domain.BatchRunning,
		RunAt:     now,
		RunBy:     userID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.accrualRepo.CreateBatch(ctx, batch); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateBatch) {
			logger.Warn("Accrual run rejected, range already has a batch",
				slog.Time("start", start), slog.Time("end", end))
		} else {
			logger.Error("Failed to create accrual batch", slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("Accrual batch started",
		slog.String("batch_id", batch.BatchID),
		slog.Time("start", start), slog.Time("end", end))
	return s.process(ctx, &batch, receivable, income, nil, userID)
}

// Resume picks up an INCOMPLETE batch, replaying only loan-days without a
// committed entry.
func (s *accrualService) Resume(ctx context.Context, batchID string, userID string) (*domain.AccrualBatch, error) {
	logger := s.GetLogger(ctx)

	batch, err := s.accrualRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find batch %s: %w", batchID, err)
	}
	if !batch.IsResumable() {
		return nil, fmt.Errorf("%w: batch %s is %s", apperrors.ErrConflict, batchID, batch.Status)
	}

	receivable, income, err := s.accrualAccounts(ctx)
	if err != nil {
		return nil, err
	}

	committed, err := s.accrualRepo.FindBatchEntries(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load committed entries for batch %s: %w", batchID, err)
	}
	done := make(map[string]bool, len(committed))
	for _, be := range committed {
		done[loanDayKey(be.LoanID, truncateToDay(be.AccrualDate))] = true
	}

	batch.Status = domain.BatchRunning
	batch.FailureDetail = nil
	if err := s.accrualRepo.UpdateBatchStatus(ctx, batchID, domain.BatchRunning, len(committed), nil); err != nil {
		return nil, fmt.Errorf("failed to mark batch %s running: %w", batchID, err)
	}

	logger.Info("Accrual batch resumed",
		slog.String("batch_id", batchID),
		slog.Int("committed_entries", len(committed)))
	return s.process(ctx, batch, receivable, income, done, userID)
}

// process walks every day of the batch range and posts one accrual entry per
// accruing loan-day not already committed. Cancellation between postings
// stops cleanly: the batch flips INCOMPLETE with progress detail and every
// committed entry stays.
func (s *accrualService) process(ctx context.Context, batch *domain.AccrualBatch, receivable, income *domain.Account, done map[string]bool, userID string) (*domain.AccrualBatch, error) {
	logger := s.GetLogger(ctx)

	loans, err := s.loanRepo.FindAccruingLoans(ctx)
	if err != nil {
		detail := fmt.Sprintf("failed to load accruing loans: %v", err)
		s.markIncomplete(ctx, batch, detail)
		return nil, fmt.Errorf("failed to load accruing loans: %w", err)
	}

	entryCount := len(done)
	for day := batch.StartDate; day.Before(batch.EndDate); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			detail := fmt.Sprintf("cancelled at %s after %d entries", day.Format("2006-01-02"), entryCount)
			s.markIncomplete(ctx, batch, detail)
			logger.Warn("Accrual batch interrupted",
				slog.String("batch_id", batch.BatchID),
				slog.String("detail", detail))
			return batch, nil
		}

		for i := range loans {
			loan := &loans[i]
			if done[loanDayKey(loan.LoanID, day)] {
				continue
			}
			interest := loan.DailyInterest()
			if interest.IsZero() {
				continue
			}

			req := dto.CreateEntryRequest{
				EntryDate:    day,
				Description:  fmt.Sprintf("Interest accrual %s %s", loan.ReferenceCode, day.Format("2006-01-02")),
				CurrencyCode: loan.CurrencyCode,
				Lines: []dto.CreateEntryLineRequest{
					{AccountID: receivable.AccountID, Debit: interest, CurrencyCode: loan.CurrencyCode, Memo: loan.ReferenceCode},
					{AccountID: income.AccountID, Credit: interest, CurrencyCode: loan.CurrencyCode, Memo: loan.ReferenceCode},
				},
				SourceEventID: &batch.BatchID,
			}
			entry, err := s.entrySvc.PostDraftDirect(ctx, req, userID)
			if err != nil {
				detail := fmt.Sprintf("posting failed for loan %s on %s: %v", loan.ReferenceCode, day.Format("2006-01-02"), err)
				s.markIncomplete(ctx, batch, detail)
				logger.Error("Accrual posting failed",
					slog.String("batch_id", batch.BatchID),
					slog.String("loan_id", loan.LoanID),
					slog.String("error", err.Error()))
				return nil, fmt.Errorf("accrual batch %s stopped: %w", batch.BatchID, err)
			}

			be := domain.AccrualBatchEntry{
				BatchID:     batch.BatchID,
				EntryID:     entry.EntryID,
				LoanID:      loan.LoanID,
				AccrualDate: day,
			}
			if err := s.accrualRepo.SaveBatchEntry(ctx, be); err != nil {
				detail := fmt.Sprintf("failed to record entry %s for loan %s on %s: %v", entry.EntryID, loan.ReferenceCode, day.Format("2006-01-02"), err)
				s.markIncomplete(ctx, batch, detail)
				return nil, fmt.Errorf("accrual batch %s stopped: %w", batch.BatchID, err)
			}
			entryCount++
			middleware.AccrualDaysTotal.Inc()
		}
	}

	batch.Status = domain.BatchCompleted
	batch.EntryCount = entryCount
	batch.FailureDetail = nil
	if err := s.accrualRepo.UpdateBatchStatus(ctx, batch.BatchID, domain.BatchCompleted, entryCount, nil); err != nil {
		return nil, fmt.Errorf("failed to complete batch %s: %w", batch.BatchID, err)
	}

	logger.Info("Accrual batch completed",
		slog.String("batch_id", batch.BatchID),
		slog.Int("entry_count", entryCount))
	return batch, nil
}

// markIncomplete best-effort flips the batch to INCOMPLETE. It runs on a
// context detached from cancellation so an interrupted run can still record
// its progress.
func (s *accrualService) markIncomplete(ctx context.Context, batch *domain.AccrualBatch, detail string) {
	batch.Status = domain.BatchIncomplete
	batch.FailureDetail = &detail

	// Count what actually committed rather than trusting in-memory state.
	saveCtx := context.WithoutCancel(ctx)
	committed, err := s.accrualRepo.FindBatchEntries(saveCtx, batch.BatchID)
	if err == nil {
		batch.EntryCount = len(committed)
	}
	if err := s.accrualRepo.UpdateBatchStatus(saveCtx, batch.BatchID, domain.BatchIncomplete, batch.EntryCount, &detail); err != nil {
		s.GetLogger(ctx).Error("Failed to mark batch incomplete",
			slog.String("batch_id", batch.BatchID),
			slog.String("error", err.Error()))
	}
}

// GetBatchByID retrieves a batch.
func (s *accrualService) GetBatchByID(ctx context.Context, batchID string) (*domain.AccrualBatch, error) {
	batch, err := s.accrualRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find batch %s: %w", batchID, err)
	}
	return batch, nil
}

// ListBatches retrieves a paginated list of batches, newest first.
func (s *accrualService) ListBatches(ctx context.Context, limit, offset int) ([]domain.AccrualBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	batches, err := s.accrualRepo.ListBatches(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}
