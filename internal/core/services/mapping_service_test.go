package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
)

// MockTemplateRepository is a mock type for the TemplateRepositoryWithTx interface
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.MappingTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MappingTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindActiveTemplatesByEventType(ctx context.Context, eventType domain.LoanEventType) ([]domain.MappingTemplate, error) {
	args := m.Called(ctx, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MappingTemplate), args.Error(1)
}

func (m *MockTemplateRepository) ListTemplates(ctx context.Context) ([]domain.MappingTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MappingTemplate), args.Error(1)
}

func (m *MockTemplateRepository) SaveTemplate(ctx context.Context, template domain.MappingTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) UpdateTemplate(ctx context.Context, template domain.MappingTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, userID string) error {
	args := m.Called(ctx, templateID, userID)
	return args.Error(0)
}

func (m *MockTemplateRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTemplateRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTemplateRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---

type MappingServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockTemplateRepository
	mockAccountSvc *MockAccountService
	service        portssvc.MappingSvcFacade

	feesReceivable domain.Account
	feeIncome      domain.Account
}

func (suite *MappingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTemplateRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.service = services.NewMappingService(suite.mockRepo, suite.mockAccountSvc)

	suite.feesReceivable = domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1160",
		Name:         "Fees Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.feeIncome = domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "4200",
		Name:         "Fee Income",
		AccountType:  domain.Revenue,
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

func (suite *MappingServiceTestSuite) feeEvent(amount string, attrs map[string]string) domain.LoanEvent {
	return domain.LoanEvent{
		EventID:      uuid.NewString(),
		LoanID:       uuid.NewString(),
		EventType:    domain.EventFee,
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: "USD",
		OccurredAt:   time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
		Attributes:   attrs,
	}
}

func feeTemplate(name string, priority int, conditions []domain.TemplateCondition) domain.MappingTemplate {
	return domain.MappingTemplate{
		TemplateID: uuid.NewString(),
		Name:       name,
		EventType:  domain.EventFee,
		Priority:   priority,
		IsActive:   true,
		Conditions: conditions,
		Lines: []domain.TemplateLine{
			{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount", Memo: "Fee charged"},
			{AccountSelector: "4200", Side: domain.Credit, AmountExpr: "amount", Memo: "Fee income"},
		},
	}
}

func (suite *MappingServiceTestSuite) expectFeeAccounts() {
	suite.mockAccountSvc.On("GetAccountByCode", mock.Anything, "1160").Return(&suite.feesReceivable, nil).Once()
	suite.mockAccountSvc.On("GetAccountByCode", mock.Anything, "4200").Return(&suite.feeIncome, nil).Once()
}

// --- Test Cases ---

func (suite *MappingServiceTestSuite) TestResolve_ConditionalTemplateWinsOnMatch() {
	ctx := context.Background()
	lateFee := feeTemplate("Late fee", 50, []domain.TemplateCondition{
		{Field: "attr.fee_kind", Operator: domain.OpEqual, Value: "LATE"},
	})
	standardFee := feeTemplate("Standard fee", 100, nil)
	event := suite.feeEvent("40.00", map[string]string{"fee_kind": "LATE"})

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{lateFee, standardFee}, nil).Once()
	suite.expectFeeAccounts()

	lines, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().NoError(err)
	suite.Require().NotNil(tmpl)
	suite.Equal(lateFee.TemplateID, tmpl.TemplateID)
	suite.Require().Len(lines, 2)
	suite.Equal(suite.feesReceivable.AccountID, lines[0].AccountID)
	suite.True(lines[0].Debit.Equal(decimal.RequireFromString("40.00")))
	suite.Equal(suite.feeIncome.AccountID, lines[1].AccountID)
	suite.True(lines[1].Credit.Equal(decimal.RequireFromString("40.00")))
	suite.Equal("USD", lines[0].CurrencyCode)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestResolve_FallsThroughToUnconditionalTemplate() {
	ctx := context.Background()
	lateFee := feeTemplate("Late fee", 50, []domain.TemplateCondition{
		{Field: "attr.fee_kind", Operator: domain.OpEqual, Value: "LATE"},
	})
	standardFee := feeTemplate("Standard fee", 100, nil)
	event := suite.feeEvent("25.00", map[string]string{"fee_kind": "ORIGINATION"})

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{lateFee, standardFee}, nil).Once()
	suite.expectFeeAccounts()

	_, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().NoError(err)
	suite.Equal(standardFee.TemplateID, tmpl.TemplateID)
}

func (suite *MappingServiceTestSuite) TestResolve_MissingConditionFieldFailsTemplate() {
	ctx := context.Background()
	lateFee := feeTemplate("Late fee", 50, []domain.TemplateCondition{
		{Field: "attr.fee_kind", Operator: domain.OpEqual, Value: "LATE"},
	})
	standardFee := feeTemplate("Standard fee", 100, nil)
	event := suite.feeEvent("25.00", nil)

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{lateFee, standardFee}, nil).Once()
	suite.expectFeeAccounts()

	_, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().NoError(err)
	suite.Equal(standardFee.TemplateID, tmpl.TemplateID)
}

func (suite *MappingServiceTestSuite) TestResolve_NumericConditionComparison() {
	ctx := context.Background()
	largeFee := feeTemplate("Large fee", 10, []domain.TemplateCondition{
		{Field: "amount", Operator: domain.OpGreater, Value: "100"},
	})
	event := suite.feeEvent("250.0000", nil)

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{largeFee}, nil).Once()
	suite.expectFeeAccounts()

	_, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().NoError(err)
	suite.Equal(largeFee.TemplateID, tmpl.TemplateID)
}

func (suite *MappingServiceTestSuite) TestResolve_AmountExpressionProduct() {
	ctx := context.Background()
	tmpl := feeTemplate("Commitment fee", 100, nil)
	tmpl.Lines[0].AmountExpr = "amount * 0.02"
	tmpl.Lines[1].AmountExpr = "amount * 0.02"
	event := suite.feeEvent("500.00", nil)

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{tmpl}, nil).Once()
	suite.expectFeeAccounts()

	lines, _, err := suite.service.Resolve(ctx, event)

	suite.Require().NoError(err)
	suite.Require().Len(lines, 2)
	suite.True(lines[0].Debit.Equal(decimal.RequireFromString("10.00")),
		"expected 2%% of 500.00, got %s", lines[0].Debit.String())
}

func (suite *MappingServiceTestSuite) TestResolve_EventAttributeSelector() {
	ctx := context.Background()
	tmpl := feeTemplate("Routed fee", 100, nil)
	tmpl.Lines[0].AccountSelector = "event.receivable_account"
	event := suite.feeEvent("15.00", map[string]string{"receivable_account": "1160"})

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{tmpl}, nil).Once()
	suite.expectFeeAccounts()

	lines, _, err := suite.service.Resolve(ctx, event)

	suite.Require().NoError(err)
	suite.Equal(suite.feesReceivable.AccountID, lines[0].AccountID)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestResolve_UnknownSelectorAttribute() {
	ctx := context.Background()
	tmpl := feeTemplate("Routed fee", 100, nil)
	tmpl.Lines[0].AccountSelector = "event.receivable_account"
	event := suite.feeEvent("15.00", nil)

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{tmpl}, nil).Once()

	lines, _, err := suite.service.Resolve(ctx, event)

	suite.Require().Error(err)
	suite.Nil(lines)
	suite.ErrorIs(err, services.ErrBadAccountSelector)
}

func (suite *MappingServiceTestSuite) TestResolve_RenderFailureDoesNotFallThrough() {
	ctx := context.Background()
	broken := feeTemplate("Broken fee", 50, nil)
	broken.Lines[0].AccountSelector = "9999"
	fallback := feeTemplate("Standard fee", 100, nil)
	event := suite.feeEvent("25.00", nil)

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{broken, fallback}, nil).Once()
	suite.mockAccountSvc.On("GetAccountByCode", mock.Anything, "9999").Return(nil, apperrors.ErrNotFound).Once()

	lines, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().Error(err)
	suite.Nil(lines)
	suite.Nil(tmpl)
	suite.ErrorIs(err, services.ErrBadAccountSelector)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestResolve_NoMatchingTemplate() {
	ctx := context.Background()
	event := suite.feeEvent("25.00", nil)

	suite.mockRepo.On("FindActiveTemplatesByEventType", ctx, domain.EventFee).
		Return([]domain.MappingTemplate{}, nil).Once()

	lines, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().Error(err)
	suite.Nil(lines)
	suite.Nil(tmpl)
	suite.ErrorIs(err, services.ErrNoMatchingTemplate)
}

func (suite *MappingServiceTestSuite) TestResolve_UnknownEventType() {
	ctx := context.Background()
	event := suite.feeEvent("25.00", nil)
	event.EventType = "REFUND"

	lines, tmpl, err := suite.service.Resolve(ctx, event)

	suite.Require().Error(err)
	suite.Nil(lines)
	suite.Nil(tmpl)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindActiveTemplatesByEventType", mock.Anything, mock.Anything)
}

func (suite *MappingServiceTestSuite) TestCreateTemplate_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateMappingTemplateRequest{
		Name:      "Late fee",
		EventType: domain.EventFee,
		Priority:  50,
		Conditions: []dto.TemplateConditionRequest{
			{Field: "attr.fee_kind", Operator: domain.OpEqual, Value: "LATE"},
		},
		Lines: []dto.TemplateLineRequest{
			{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount"},
			{AccountSelector: "4200", Side: domain.Credit, AmountExpr: "amount"},
		},
	}

	suite.mockRepo.On("SaveTemplate", ctx, mock.AnythingOfType("domain.MappingTemplate")).Return(nil).Once()

	tmpl, err := suite.service.CreateTemplate(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(tmpl)
	suite.NotEmpty(tmpl.TemplateID)
	suite.True(tmpl.IsActive)
	suite.Equal(50, tmpl.Priority)
	suite.Len(tmpl.Conditions, 1)
	suite.Len(tmpl.Lines, 2)
	suite.Equal(userID, tmpl.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestCreateTemplate_BadAmountExpr() {
	ctx := context.Background()
	req := dto.CreateMappingTemplateRequest{
		Name:      "Broken",
		EventType: domain.EventFee,
		Lines: []dto.TemplateLineRequest{
			{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount + 1"},
			{AccountSelector: "4200", Side: domain.Credit, AmountExpr: "amount"},
		},
	}

	tmpl, err := suite.service.CreateTemplate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(tmpl)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTemplate", mock.Anything, mock.Anything)
}

func (suite *MappingServiceTestSuite) TestCreateTemplate_TooFewLines() {
	ctx := context.Background()
	req := dto.CreateMappingTemplateRequest{
		Name:      "One-legged",
		EventType: domain.EventFee,
		Lines: []dto.TemplateLineRequest{
			{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount"},
		},
	}

	tmpl, err := suite.service.CreateTemplate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(tmpl)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MappingServiceTestSuite) TestCreateTemplate_InConditionNeedsValues() {
	ctx := context.Background()
	req := dto.CreateMappingTemplateRequest{
		Name:      "Empty IN",
		EventType: domain.EventFee,
		Conditions: []dto.TemplateConditionRequest{
			{Field: "attr.fee_kind", Operator: domain.OpIn},
		},
		Lines: []dto.TemplateLineRequest{
			{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount"},
			{AccountSelector: "4200", Side: domain.Credit, AmountExpr: "amount"},
		},
	}

	tmpl, err := suite.service.CreateTemplate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(tmpl)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MappingServiceTestSuite) TestDeactivateTemplate_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	tmpl := feeTemplate("Standard fee", 100, nil)

	suite.mockRepo.On("FindTemplateByID", ctx, tmpl.TemplateID).Return(&tmpl, nil).Once()
	suite.mockRepo.On("DeactivateTemplate", ctx, tmpl.TemplateID, userID).Return(nil).Once()

	err := suite.service.DeactivateTemplate(ctx, tmpl.TemplateID, userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MappingServiceTestSuite) TestDeactivateTemplate_NotFound() {
	ctx := context.Background()

	suite.mockRepo.On("FindTemplateByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeactivateTemplate(ctx, "missing", uuid.NewString())

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateTemplate", mock.Anything, mock.Anything, mock.Anything)
}

func TestMappingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MappingServiceTestSuite))
}
