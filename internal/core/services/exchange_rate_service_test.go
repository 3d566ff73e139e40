package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

// MockExchangeRateRepository is a mock type for the ExchangeRateRepositoryFacade interface
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockCurrencyService is a mock type for the CurrencyReaderSvc interface
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Test Suite Setup ---

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRepo        *MockExchangeRateRepository
	mockCurrencySvc *MockCurrencyService
	service         portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockExchangeRateRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.service = services.NewExchangeRateService(suite.mockRepo, suite.mockCurrencySvc)
}

func (suite *ExchangeRateServiceTestSuite) expectCurrency(ctx context.Context, code string) {
	currency := &domain.Currency{CurrencyCode: code, Precision: 2}
	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, code).Return(currency, nil).Once()
}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	effective := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.RequireFromString("0.9215"),
		DateEffective:    effective,
	}

	suite.expectCurrency(ctx, "USD")
	suite.expectCurrency(ctx, "EUR")
	suite.mockRepo.On("SaveExchangeRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.FromCurrencyCode == "USD" && r.ToCurrencyCode == "EUR" &&
			r.Rate.Equal(req.Rate) && r.DateEffective.Equal(effective)
	})).Return(nil).Once()

	created, err := suite.service.CreateExchangeRate(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.ExchangeRateID)
	suite.Equal(userID, created.CreatedBy)
	suite.True(created.Rate.Equal(req.Rate))
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCurrencySvc.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_NonPositiveRate() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.Zero,
		DateEffective:    time.Now(),
	}

	created, err := suite.service.CreateExchangeRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockCurrencySvc.AssertNotCalled(suite.T(), "GetCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_SameCurrency() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "USD",
		Rate:             decimal.NewFromInt(1),
		DateEffective:    time.Now(),
	}

	created, err := suite.service.CreateExchangeRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_UnknownFromCurrency() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "XXX",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.RequireFromString("0.9215"),
		DateEffective:    time.Now(),
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	created, err := suite.service.CreateExchangeRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockCurrencySvc.AssertNotCalled(suite.T(), "GetCurrencyByCode", mock.Anything, "EUR")
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
	suite.mockCurrencySvc.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestGetExchangeRate_UppercasesCodes() {
	ctx := context.Background()
	asOf := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	stored := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.RequireFromString("0.9215"),
		DateEffective:    asOf.AddDate(0, 0, -14),
	}

	suite.mockRepo.On("FindExchangeRate", ctx, "USD", "EUR", asOf).Return(stored, nil).Once()

	rate, err := suite.service.GetExchangeRate(ctx, "usd", "eur", asOf)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.True(rate.Rate.Equal(stored.Rate))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestGetExchangeRate_BadCode() {
	ctx := context.Background()

	rate, err := suite.service.GetExchangeRate(ctx, "US", "EUR", time.Now())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rate)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindExchangeRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestGetExchangeRate_NotFound() {
	ctx := context.Background()
	asOf := time.Now()

	suite.mockRepo.On("FindExchangeRate", ctx, "USD", "JPY", asOf).Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.GetExchangeRate(ctx, "USD", "JPY", asOf)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(rate)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_NilBecomesEmpty() {
	ctx := context.Background()

	suite.mockRepo.On("ListExchangeRates", ctx).Return(nil, nil).Once()

	rates, err := suite.service.ListExchangeRates(ctx)

	suite.Require().NoError(err)
	suite.NotNil(rates)
	suite.Len(rates, 0)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_RepoError() {
	ctx := context.Background()

	suite.mockRepo.On("ListExchangeRates", ctx).Return(nil, assert.AnError).Once()

	rates, err := suite.service.ListExchangeRates(ctx)

	suite.Require().Error(err)
	suite.Nil(rates)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
