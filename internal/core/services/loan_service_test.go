package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
)

// MockMappingService is a mock type for the MappingResolverSvc interface
type MockMappingService struct {
	mock.Mock
}

func (m *MockMappingService) Resolve(ctx context.Context, event domain.LoanEvent) ([]domain.JournalLine, *domain.MappingTemplate, error) {
	args := m.Called(ctx, event)
	var lines []domain.JournalLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.JournalLine)
	}
	var tmpl *domain.MappingTemplate
	if args.Get(1) != nil {
		tmpl = args.Get(1).(*domain.MappingTemplate)
	}
	return lines, tmpl, args.Error(2)
}

// --- Test Suite Setup ---

type LoanServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockLoanRepository
	mockMappingSvc *MockMappingService
	mockEntrySvc   *MockEntryService
	service        portssvc.LoanSvcFacade
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLoanRepository)
	suite.mockMappingSvc = new(MockMappingService)
	suite.mockEntrySvc = new(MockEntryService)
	suite.service = services.NewLoanService(suite.mockRepo, suite.mockMappingSvc, suite.mockEntrySvc)
}

func pendingLoan() domain.Loan {
	return domain.Loan{
		LoanID:               uuid.NewString(),
		ReferenceCode:        "LN-2026-0101",
		BorrowerName:         "Harbor Freight Co-op",
		Principal:            decimal.RequireFromString("250000.00"),
		OutstandingPrincipal: decimal.Zero,
		AnnualRate:           decimal.RequireFromString("0.095"),
		DayCountBasis:        360,
		CurrencyCode:         "USD",
		Status:               domain.LoanPending,
	}
}

func resolvedLines(amount decimal.Decimal) []domain.JournalLine {
	return []domain.JournalLine{
		{AccountID: uuid.NewString(), Debit: amount, CurrencyCode: "USD"},
		{AccountID: uuid.NewString(), Credit: amount, CurrencyCode: "USD"},
	}
}

// expectEventPosting wires the resolve-save-post-link chain every lifecycle
// operation runs through and returns the entry the posting yields.
func (suite *LoanServiceTestSuite) expectEventPosting(amount decimal.Decimal) *domain.JournalEntry {
	entry := postedEntry()
	template := &domain.MappingTemplate{TemplateID: uuid.NewString(), Name: "Standard"}

	suite.mockMappingSvc.On("Resolve", mock.Anything, mock.AnythingOfType("domain.LoanEvent")).
		Return(resolvedLines(amount), template, nil).Once()
	suite.mockRepo.On("SaveEvent", mock.Anything, mock.AnythingOfType("domain.LoanEvent")).Return(nil).Once()
	suite.mockEntrySvc.On("PostDraftDirect", mock.Anything, mock.AnythingOfType("dto.CreateEntryRequest"), mock.AnythingOfType("string")).
		Return(entry, nil).Once()
	suite.mockRepo.On("SetEventEntryID", mock.Anything, mock.AnythingOfType("string"), entry.EntryID).Return(nil).Once()
	return entry
}

// --- Test Cases ---

func (suite *LoanServiceTestSuite) TestCreateLoan_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateLoanRequest{
		ReferenceCode: "LN-2026-0200",
		BorrowerName:  "Meridian Logistics LLC",
		Principal:     decimal.RequireFromString("150000.00"),
		AnnualRate:    decimal.RequireFromString("0.11"),
		DayCountBasis: 365,
		CurrencyCode:  "USD",
	}

	suite.mockRepo.On("SaveLoan", ctx, mock.MatchedBy(func(l domain.Loan) bool {
		return l.Status == domain.LoanPending && l.OutstandingPrincipal.IsZero()
	})).Return(nil).Once()

	loan, err := suite.service.CreateLoan(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(loan)
	suite.NotEmpty(loan.LoanID)
	suite.Equal(domain.LoanPending, loan.Status)
	suite.True(loan.OutstandingPrincipal.IsZero())
	suite.Nil(loan.DisbursedAt)
	suite.Equal(userID, loan.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestCreateLoan_InvalidDayCountBasis() {
	ctx := context.Background()
	req := dto.CreateLoanRequest{
		ReferenceCode: "LN-2026-0201",
		BorrowerName:  "Meridian Logistics LLC",
		Principal:     decimal.RequireFromString("150000.00"),
		AnnualRate:    decimal.RequireFromString("0.11"),
		DayCountBasis: 364,
		CurrencyCode:  "USD",
	}

	loan, err := suite.service.CreateLoan(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(loan)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveLoan", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestCreateLoan_DuplicateReference() {
	ctx := context.Background()
	req := dto.CreateLoanRequest{
		ReferenceCode: "LN-2026-0200",
		BorrowerName:  "Meridian Logistics LLC",
		Principal:     decimal.RequireFromString("150000.00"),
		AnnualRate:    decimal.RequireFromString("0.11"),
		DayCountBasis: 365,
		CurrencyCode:  "USD",
	}

	suite.mockRepo.On("SaveLoan", ctx, mock.AnythingOfType("domain.Loan")).Return(apperrors.ErrDuplicate).Once()

	loan, err := suite.service.CreateLoan(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(loan)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *LoanServiceTestSuite) TestDisburse_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	loan := pendingLoan()

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()
	entry := suite.expectEventPosting(loan.Principal)
	suite.mockRepo.On("UpdateLoan", ctx, mock.MatchedBy(func(l domain.Loan) bool {
		return l.Status == domain.LoanActive &&
			l.OutstandingPrincipal.Equal(loan.Principal) &&
			l.DisbursedAt != nil
	})).Return(nil).Once()

	event, err := suite.service.Disburse(ctx, loan.LoanID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(event)
	suite.Equal(domain.EventDisbursement, event.EventType)
	suite.True(event.Amount.Equal(loan.Principal))
	suite.Require().NotNil(event.EntryID)
	suite.Equal(entry.EntryID, *event.EntryID)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockMappingSvc.AssertExpectations(suite.T())
	suite.mockEntrySvc.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestDisburse_NotPending() {
	ctx := context.Background()
	loan := activeLoan()

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()

	event, err := suite.service.Disburse(ctx, loan.LoanID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(event)
	suite.ErrorIs(err, services.ErrLoanNotPending)
	suite.mockMappingSvc.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestDisburse_NoMatchingTemplate() {
	ctx := context.Background()
	loan := pendingLoan()

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()
	suite.mockMappingSvc.On("Resolve", mock.Anything, mock.AnythingOfType("domain.LoanEvent")).
		Return(nil, nil, services.ErrNoMatchingTemplate).Once()

	event, err := suite.service.Disburse(ctx, loan.LoanID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(event)
	suite.ErrorIs(err, services.ErrNoMatchingTemplate)

	// The event is only saved once a template resolved; the loan stays PENDING.
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveEvent", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateLoan", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestRecordRepayment_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	loan := activeLoan()
	amount := decimal.RequireFromString("40000.00")

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()
	suite.expectEventPosting(amount)
	suite.mockRepo.On("UpdateLoan", ctx, mock.MatchedBy(func(l domain.Loan) bool {
		return l.Status == domain.LoanActive &&
			l.OutstandingPrincipal.Equal(decimal.RequireFromString("60000.00"))
	})).Return(nil).Once()

	event, err := suite.service.RecordRepayment(ctx, loan.LoanID, dto.LoanPaymentRequest{Amount: amount}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.EventRepayment, event.EventType)
	suite.True(event.Amount.Equal(amount))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestRecordRepayment_FullAmountClosesLoan() {
	ctx := context.Background()
	loan := activeLoan()

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()
	suite.expectEventPosting(loan.OutstandingPrincipal)
	suite.mockRepo.On("UpdateLoan", ctx, mock.MatchedBy(func(l domain.Loan) bool {
		return l.Status == domain.LoanClosed && l.OutstandingPrincipal.IsZero()
	})).Return(nil).Once()

	_, err := suite.service.RecordRepayment(ctx, loan.LoanID,
		dto.LoanPaymentRequest{Amount: loan.OutstandingPrincipal}, uuid.NewString())

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestRecordRepayment_ExceedsOutstanding() {
	ctx := context.Background()
	loan := activeLoan()
	tooMuch := loan.OutstandingPrincipal.Add(decimal.RequireFromString("0.01"))

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()

	event, err := suite.service.RecordRepayment(ctx, loan.LoanID, dto.LoanPaymentRequest{Amount: tooMuch}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(event)
	suite.ErrorIs(err, services.ErrRepaymentTooHigh)
	suite.mockMappingSvc.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestRecordRepayment_NotActive() {
	ctx := context.Background()
	loan := pendingLoan()

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()

	event, err := suite.service.RecordRepayment(ctx, loan.LoanID,
		dto.LoanPaymentRequest{Amount: decimal.RequireFromString("100.00")}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(event)
	suite.ErrorIs(err, services.ErrLoanNotActive)
}

func (suite *LoanServiceTestSuite) TestChargeFee_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	loan := activeLoan()
	amount := decimal.RequireFromString("40.00")

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()

	entry := postedEntry()
	template := &domain.MappingTemplate{TemplateID: uuid.NewString(), Name: "Late fee"}
	suite.mockMappingSvc.On("Resolve", mock.Anything, mock.MatchedBy(func(event domain.LoanEvent) bool {
		return event.EventType == domain.EventFee && event.Attributes["fee_kind"] == "LATE"
	})).Return(resolvedLines(amount), template, nil).Once()
	suite.mockRepo.On("SaveEvent", mock.Anything, mock.AnythingOfType("domain.LoanEvent")).Return(nil).Once()
	suite.mockEntrySvc.On("PostDraftDirect", mock.Anything, mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
		return req.Description == "LATE fee on loan "+loan.ReferenceCode && req.SourceEventID != nil
	}), userID).Return(entry, nil).Once()
	suite.mockRepo.On("SetEventEntryID", mock.Anything, mock.AnythingOfType("string"), entry.EntryID).Return(nil).Once()

	event, err := suite.service.ChargeFee(ctx, loan.LoanID, dto.LoanFeeRequest{Amount: amount, FeeKind: "LATE"}, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.EventFee, event.EventType)
	suite.Equal("LATE", event.Attributes["fee_kind"])

	// Fees never touch principal.
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateLoan", mock.Anything, mock.Anything)
	suite.mockMappingSvc.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestWriteOff_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	loan := activeLoan()
	outstanding := loan.OutstandingPrincipal

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()
	suite.expectEventPosting(outstanding)
	suite.mockRepo.On("UpdateLoan", ctx, mock.MatchedBy(func(l domain.Loan) bool {
		return l.Status == domain.LoanWrittenOff && l.OutstandingPrincipal.IsZero()
	})).Return(nil).Once()

	event, err := suite.service.WriteOff(ctx, loan.LoanID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.EventWriteOff, event.EventType)
	suite.True(event.Amount.Equal(outstanding))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestWriteOff_NotActive() {
	ctx := context.Background()
	loan := pendingLoan()

	suite.mockRepo.On("FindLoanByID", ctx, loan.LoanID).Return(&loan, nil).Once()

	event, err := suite.service.WriteOff(ctx, loan.LoanID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(event)
	suite.ErrorIs(err, services.ErrLoanNotActive)
	suite.mockMappingSvc.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything)
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}
