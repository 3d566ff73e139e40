package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/dto"
)

var (
	ErrLoanNotPending   = errors.New("loan is not pending disbursement")
	ErrLoanNotActive    = errors.New("loan is not active")
	ErrRepaymentTooHigh = errors.New("repayment exceeds outstanding principal")
)

// loanService manages loan records and drives their lifecycle. Every state
// change emits a typed event which the mapping engine translates into a
// journal entry; the loan row itself never carries money movement.
type loanService struct {
	BaseService
	loanRepo   portsrepo.LoanRepositoryWithTx
	mappingSvc portssvc.MappingResolverSvc
	entrySvc   portssvc.EntrySvcFacade
}

// NewLoanService creates a new LoanService.
func NewLoanService(loanRepo portsrepo.LoanRepositoryWithTx, mappingSvc portssvc.MappingResolverSvc, entrySvc portssvc.EntrySvcFacade) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo:   loanRepo,
		mappingSvc: mappingSvc,
		entrySvc:   entrySvc,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// CreateLoan persists a new PENDING loan.
func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	logger := s.GetLogger(ctx)

	if !req.Principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
	}
	if req.AnnualRate.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must not be negative", apperrors.ErrValidation)
	}
	if req.DayCountBasis != domain.Basis360 && req.DayCountBasis != domain.Basis365 {
		return nil, fmt.Errorf("%w: day count basis must be 360 or 365", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	loan := domain.Loan{
		LoanID:               uuid.NewString(),
		ReferenceCode:        req.ReferenceCode,
		BorrowerName:         req.BorrowerName,
		Principal:            req.Principal,
		OutstandingPrincipal: decimal.Zero,
		AnnualRate:           req.AnnualRate,
		DayCountBasis:        req.DayCountBasis,
		CurrencyCode:         req.CurrencyCode,
		Status:               domain.LoanPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: reference code %s already exists", apperrors.ErrDuplicate, req.ReferenceCode)
		}
		logger.Error("Failed to save loan", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	logger.Info("Loan created", slog.String("loan_id", loan.LoanID), slog.String("reference", loan.ReferenceCode))
	return &loan, nil
}

// GetLoanByID retrieves a specific loan.
func (s *loanService) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	return loan, nil
}

// ListLoans retrieves a paginated list of loans.
func (s *loanService) ListLoans(ctx context.Context, limit, offset int) ([]domain.Loan, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	loans, err := s.loanRepo.ListLoans(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// ListLoanEvents retrieves the lifecycle events of a loan.
func (s *loanService) ListLoanEvents(ctx context.Context, loanID string) ([]domain.LoanEvent, error) {
	if _, err := s.loanRepo.FindLoanByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	events, err := s.loanRepo.FindEventsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for loan %s: %w", loanID, err)
	}
	return events, nil
}

// postEvent resolves the event through the mapping engine, posts the
// resulting entry and links it back to the event. The event row is saved
// first so a posting failure leaves an unlinked event for investigation
// rather than a posted entry with no provenance.
func (s *loanService) postEvent(ctx context.Context, event domain.LoanEvent, description string, userID string) (*domain.LoanEvent, error) {
	logger := s.GetLogger(ctx)

	lines, template, err := s.mappingSvc.Resolve(ctx, event)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.SaveEvent(ctx, event); err != nil {
		logger.Error("Failed to save loan event", slog.String("error", err.Error()), slog.String("event_id", event.EventID))
		return nil, fmt.Errorf("failed to save loan event: %w", err)
	}

	lineReqs := make([]dto.CreateEntryLineRequest, len(lines))
	for i := range lines {
		lineReqs[i] = dto.CreateEntryLineRequest{
			AccountID:    lines[i].AccountID,
			Debit:        lines[i].Debit,
			Credit:       lines[i].Credit,
			CurrencyCode: lines[i].CurrencyCode,
			Memo:         lines[i].Memo,
		}
	}
	entryReq := dto.CreateEntryRequest{
		EntryDate:     event.OccurredAt,
		Description:   description,
		CurrencyCode:  event.CurrencyCode,
		Lines:         lineReqs,
		SourceEventID: &event.EventID,
	}

	entry, err := s.entrySvc.PostDraftDirect(ctx, entryReq, userID)
	if err != nil {
		logger.Error("Failed to post entry for loan event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.EventID),
			slog.String("template_id", template.TemplateID))
		return nil, err
	}

	if err := s.loanRepo.SetEventEntryID(ctx, event.EventID, entry.EntryID); err != nil {
		logger.Error("Failed to link entry to loan event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.EventID),
			slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to link entry to event: %w", err)
	}

	event.EntryID = &entry.EntryID
	logger.Info("Loan event posted",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.EventType)),
		slog.String("entry_id", entry.EntryID),
		slog.String("template_id", template.TemplateID))
	return &event, nil
}

func newLoanEvent(loan *domain.Loan, eventType domain.LoanEventType, amount decimal.Decimal, occurredAt time.Time, attrs map[string]string, userID string) domain.LoanEvent {
	now := time.Now().UTC()
	return domain.LoanEvent{
		EventID:      uuid.NewString(),
		LoanID:       loan.LoanID,
		EventType:    eventType,
		Amount:       amount,
		CurrencyCode: loan.CurrencyCode,
		OccurredAt:   occurredAt,
		Attributes:   attrs,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// Disburse activates a PENDING loan and posts the disbursement entry for the
// full principal.
func (s *loanService) Disburse(ctx context.Context, loanID string, userID string) (*domain.LoanEvent, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if loan.Status != domain.LoanPending {
		return nil, fmt.Errorf("%w: loan %s is %s", ErrLoanNotPending, loanID, loan.Status)
	}

	now := time.Now().UTC()
	event := newLoanEvent(loan, domain.EventDisbursement, loan.Principal, now, nil, userID)
	description := fmt.Sprintf("Disbursement of loan %s", loan.ReferenceCode)

	posted, err := s.postEvent(ctx, event, description, userID)
	if err != nil {
		return nil, err
	}

	loan.Status = domain.LoanActive
	loan.OutstandingPrincipal = loan.Principal
	loan.DisbursedAt = &now
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, fmt.Errorf("failed to activate loan %s: %w", loanID, err)
	}
	return posted, nil
}

// RecordRepayment reduces outstanding principal and posts the repayment
// entry. Repaying the full outstanding amount closes the loan.
func (s *loanService) RecordRepayment(ctx context.Context, loanID string, req dto.LoanPaymentRequest, userID string) (*domain.LoanEvent, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("%w: loan %s is %s", ErrLoanNotActive, loanID, loan.Status)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: repayment amount must be positive", apperrors.ErrValidation)
	}
	if req.Amount.GreaterThan(loan.OutstandingPrincipal) {
		return nil, fmt.Errorf("%w: %s against outstanding %s",
			ErrRepaymentTooHigh, req.Amount.String(), loan.OutstandingPrincipal.String())
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	event := newLoanEvent(loan, domain.EventRepayment, req.Amount, paidAt, nil, userID)
	description := fmt.Sprintf("Repayment on loan %s", loan.ReferenceCode)

	posted, err := s.postEvent(ctx, event, description, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan.OutstandingPrincipal = loan.OutstandingPrincipal.Sub(req.Amount)
	if loan.OutstandingPrincipal.IsZero() {
		loan.Status = domain.LoanClosed
	}
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, fmt.Errorf("failed to update loan %s after repayment: %w", loanID, err)
	}
	return posted, nil
}

// ChargeFee posts a fee entry against an active loan. The fee kind travels
// on the event attributes so templates can route by it.
func (s *loanService) ChargeFee(ctx context.Context, loanID string, req dto.LoanFeeRequest, userID string) (*domain.LoanEvent, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("%w: loan %s is %s", ErrLoanNotActive, loanID, loan.Status)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: fee amount must be positive", apperrors.ErrValidation)
	}

	attrs := map[string]string{"fee_kind": req.FeeKind}
	event := newLoanEvent(loan, domain.EventFee, req.Amount, time.Now().UTC(), attrs, userID)
	description := fmt.Sprintf("%s fee on loan %s", req.FeeKind, loan.ReferenceCode)

	return s.postEvent(ctx, event, description, userID)
}

// WriteOff terminates an active loan, posting the outstanding principal as a
// write-off.
func (s *loanService) WriteOff(ctx context.Context, loanID string, userID string) (*domain.LoanEvent, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if loan.Status != domain.LoanActive {
		return nil, fmt.Errorf("%w: loan %s is %s", ErrLoanNotActive, loanID, loan.Status)
	}

	event := newLoanEvent(loan, domain.EventWriteOff, loan.OutstandingPrincipal, time.Now().UTC(), nil, userID)
	description := fmt.Sprintf("Write-off of loan %s", loan.ReferenceCode)

	posted, err := s.postEvent(ctx, event, description, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan.OutstandingPrincipal = decimal.Zero
	loan.Status = domain.LoanWrittenOff
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, fmt.Errorf("failed to update loan %s after write-off: %w", loanID, err)
	}
	return posted, nil
}
