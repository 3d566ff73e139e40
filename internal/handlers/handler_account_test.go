package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/handlers"
	"github.com/lendaro/loanledger/internal/platform/config"
)

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountTree(ctx context.Context) (*domain.AccountTree, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountTree), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

func (m *MockAccountService) CalculateAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock EntryService ---

type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockEntryService) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) Post(ctx context.Context, entryID string, postingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, postingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) PostDraftDirect(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) Void(ctx context.Context, entryID string, userID string, req dto.VoidEntryRequest) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLinesResponse), args.Error(1)
}

var _ portssvc.EntrySvcFacade = (*MockEntryService)(nil)

// --- Test Suite Setup ---

type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockEntryService   *MockEntryService
	jwtSecret          string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockAccountService = new(MockAccountService)
	suite.mockEntryService = new(MockEntryService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // keeps swagger out of the test router
	}
	container := &portssvc.ServiceContainer{
		Account: suite.mockAccountService,
		Entry:   suite.mockEntryService,
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

// generateTestToken creates a signed JWT accepted by the auth middleware.
func (suite *AccountHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "loanledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AccountHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}
	created := &domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  req.AccountCode,
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: req.CurrencyCode,
		IsActive:     true,
		Balance:      decimal.Zero,
	}

	suite.mockAccountService.On("CreateAccount", mock.Anything, req, userID).Return(created, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", userID, req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.AccountID, resp.AccountID)
	suite.Equal("1200", resp.AccountCode)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateCode() {
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	suite.mockAccountService.On("CreateAccount", mock.Anything, req, userID).
		Return(nil, fmt.Errorf("account code 1200: %w", apperrors.ErrDuplicate)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", userID, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MissingToken() {
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", "", req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockAccountService.On("GetAccountByID", mock.Anything, accountID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/"+accountID, userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccountTree_Success() {
	userID := uuid.NewString()
	parent := domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1100",
		Name:         "Cash and Equivalents",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	child := domain.Account{
		AccountID:       uuid.NewString(),
		AccountCode:     "1110",
		Name:            "Operating Cash",
		AccountType:     domain.Asset,
		CurrencyCode:    "USD",
		ParentAccountID: &parent.AccountID,
		IsActive:        true,
	}
	tree, err := domain.NewAccountTree([]domain.Account{parent, child})
	suite.Require().NoError(err)

	suite.mockAccountService.On("GetAccountTree", mock.Anything).Return(tree, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/tree", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountTreeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Accounts, 2)
	suite.Equal(parent.AccountID, resp.Accounts[0].AccountID)
	suite.Equal(1, resp.Accounts[0].Depth)
	suite.False(resp.Accounts[0].IsLeaf)
	suite.Equal(child.AccountID, resp.Accounts[1].AccountID)
	suite.Equal(2, resp.Accounts[1].Depth)
	suite.True(resp.Accounts[1].IsLeaf)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_Success() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockAccountService.On("CalculateAccountBalance", mock.Anything, accountID).
		Return(decimal.RequireFromString("123.45"), nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/"+accountID+"/balance", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(accountID, resp.AccountID)
	suite.True(resp.Balance.Equal(decimal.RequireFromString("123.45")))
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListAccountLines_Success() {
	userID := uuid.NewString()
	accountID := uuid.NewString()
	expected := &dto.ListLinesResponse{
		Lines: []dto.EntryLineResponse{
			{
				LineID:         uuid.NewString(),
				AccountID:      accountID,
				Debit:          decimal.RequireFromString("100.00"),
				Credit:         decimal.Zero,
				CurrencyCode:   "USD",
				RunningBalance: decimal.RequireFromString("100.00"),
			},
		},
	}

	suite.mockEntryService.On("ListLinesByAccount", mock.Anything, accountID, mock.MatchedBy(func(p dto.ListLinesParams) bool {
		return p.Limit == 10 && p.NextToken == nil
	})).Return(expected, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/"+accountID+"/lines?limit=10", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListLinesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Lines, 1)
	suite.Equal(expected.Lines[0].LineID, resp.Lines[0].LineID)
	suite.mockEntryService.AssertExpectations(suite.T())
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestUpdateAccount_Success() {
	userID := uuid.NewString()
	accountID := uuid.NewString()
	newName := "Loans Receivable USD"
	req := dto.UpdateAccountRequest{Name: &newName}
	updated := &domain.Account{
		AccountID:    accountID,
		AccountCode:  "1200",
		Name:         newName,
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}

	suite.mockAccountService.On("UpdateAccount", mock.Anything, accountID, req, userID).Return(updated, nil).Once()

	w := suite.doRequest(http.MethodPut, "/api/v1/accounts/"+accountID, userID, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(newName, resp.Name)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_ConflictOnActiveChildren() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockAccountService.On("DeactivateAccount", mock.Anything, accountID, userID).
		Return(fmt.Errorf("account 1100: %w", services.ErrAccountHasActiveChildren)).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/accounts/"+accountID, userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Success() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockAccountService.On("DeactivateAccount", mock.Anything, accountID, userID).Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/accounts/"+accountID, userID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
