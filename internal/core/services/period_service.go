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
)

var ErrPeriodOverlap = errors.New("period overlaps an existing period")

// periodService manages accounting periods. Closing is terminal: once a
// period is CLOSED nothing reopens it, corrections go into a later open
// period.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryWithTx
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryWithTx) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod persists a new OPEN period after range validation. Ranges are
// [start, end) and may not overlap any existing period.
func (s *periodService) CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, creatorUserID string) (*domain.AccountingPeriod, error) {
	logger := s.GetLogger(ctx)

	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}

	overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("%w: %s overlaps %s", ErrPeriodOverlap, req.Name, overlapping[0].Name)
	}

	now := time.Now().UTC()
	period := domain.AccountingPeriod{
		PeriodID:       uuid.NewString(),
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         domain.PeriodOpen,
		NextSequenceNo: 1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		logger.Error("Failed to save period", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	logger.Info("Period created", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	return &period, nil
}

// ClosePeriod transitions an OPEN period to CLOSED. The repository locks the
// period row and re-counts draft entries under the lock, so a draft slipping
// in concurrently still blocks the close.
func (s *periodService) ClosePeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error) {
	logger := s.GetLogger(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if !period.IsOpen() {
		return nil, fmt.Errorf("%w: period %s", apperrors.ErrClosedPeriod, periodID)
	}

	closed, err := s.periodRepo.ClosePeriod(ctx, periodID, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrPeriodHasDraftEntries) {
			logger.Warn("Close rejected, draft entries remain", slog.String("period_id", periodID))
		} else {
			logger.Error("Failed to close period", slog.String("error", err.Error()), slog.String("period_id", periodID))
		}
		return nil, err
	}

	logger.Info("Period closed", slog.String("period_id", periodID), slog.String("closed_by", userID))
	return closed, nil
}

// GetPeriodByID retrieves a specific period.
func (s *periodService) GetPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	return period, nil
}

// ListPeriods retrieves all periods ordered by start date.
func (s *periodService) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

// EnsureOpenFor resolves the OPEN period containing the date. A closed
// containing period and a date with no period at all both surface the
// closed-period error, since either way the date cannot accept postings.
func (s *periodService) EnsureOpenFor(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodContaining(ctx, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no period covers %s", apperrors.ErrClosedPeriod, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to resolve period for %s: %w", date.Format("2006-01-02"), err)
	}
	if !period.IsOpen() {
		return nil, fmt.Errorf("%w: period %s", apperrors.ErrClosedPeriod, period.Name)
	}
	return period, nil
}
