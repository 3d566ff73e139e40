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

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAllAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	args := m.Called(ctx, parentAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostedLines(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo         *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewAccountService(suite.mockRepo, suite.mockCurrencyRepo)
}

func chartAccount(code, name string, accountType domain.AccountType, parentID *string) domain.Account {
	return domain.Account{
		AccountID:       uuid.NewString(),
		AccountCode:     code,
		Name:            name,
		AccountType:     accountType,
		CurrencyCode:    "USD",
		ParentAccountID: parentID,
		IsActive:        true,
		Balance:         decimal.Zero,
	}
}

func (suite *AccountServiceTestSuite) expectKnownCurrency(ctx context.Context, code string) {
	currency := &domain.Currency{CurrencyCode: code, Symbol: "$", Name: "US Dollar", Precision: 2}
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, code).Return(currency, nil).Once()
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		Description:  "Principal outstanding across all loans",
	}

	suite.expectKnownCurrency(ctx, "USD")
	suite.mockRepo.On("FindAccountByCode", ctx, "1200").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("ListAllAccounts", ctx).Return([]domain.Account{}, nil).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(acc domain.Account) bool {
		return acc.AccountCode == "1200" && acc.IsActive && acc.Balance.IsZero() && acc.ParentAccountID == nil
	})).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.AccountID)
	suite.Equal(req.AccountCode, created.AccountCode)
	suite.Equal(req.Name, created.Name)
	suite.Equal(domain.Asset, created.AccountType)
	suite.Equal("USD", created.CurrencyCode)
	suite.True(created.IsActive)
	suite.True(created.Balance.IsZero())
	suite.Equal(userID, created.CreatedBy)
	suite.Equal(userID, created.LastUpdatedBy)
	suite.WithinDuration(time.Now(), created.CreatedAt, time.Second)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable",
		AccountType:  domain.AccountType("PREPAID"),
		CurrencyCode: "USD",
	}

	created, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "FindCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownCurrency() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "XXX",
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	created, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByCode", mock.Anything, mock.Anything)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	existing := chartAccount("1200", "Loans Receivable", domain.Asset, nil)
	req := dto.CreateAccountRequest{
		AccountCode:  "1200",
		Name:         "Loans Receivable Again",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	suite.expectKnownCurrency(ctx, "USD")
	suite.mockRepo.On("FindAccountByCode", ctx, "1200").Return(&existing, nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(created)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentHasPostings() {
	ctx := context.Background()
	parent := chartAccount("1100", "Cash and Equivalents", domain.Asset, nil)
	req := dto.CreateAccountRequest{
		AccountCode:     "1110",
		Name:            "Operating Cash",
		AccountType:     domain.Asset,
		CurrencyCode:    "USD",
		ParentAccountID: &parent.AccountID,
	}

	suite.expectKnownCurrency(ctx, "USD")
	suite.mockRepo.On("FindAccountByCode", ctx, "1110").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, parent.AccountID).Return(&parent, nil).Once()
	suite.mockRepo.On("HasPostedLines", ctx, parent.AccountID).Return(true, nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountHasPostings)
	suite.Nil(created)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListAllAccounts", mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DepthLimitExceeded() {
	ctx := context.Background()

	// A chain already at the maximum depth; one more child must be refused.
	chain := make([]domain.Account, 0, domain.MaxAccountDepth)
	var parentID *string
	for i := 0; i < domain.MaxAccountDepth; i++ {
		acc := chartAccount("110"+string(rune('0'+i)), "Level", domain.Asset, parentID)
		chain = append(chain, acc)
		parentID = &chain[len(chain)-1].AccountID
	}
	deepest := chain[len(chain)-1]

	req := dto.CreateAccountRequest{
		AccountCode:     "1999",
		Name:            "One Level Too Deep",
		AccountType:     domain.Asset,
		CurrencyCode:    "USD",
		ParentAccountID: &deepest.AccountID,
	}

	suite.expectKnownCurrency(ctx, "USD")
	suite.mockRepo.On("FindAccountByCode", ctx, "1999").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, deepest.AccountID).Return(&deepest, nil).Once()
	suite.mockRepo.On("HasPostedLines", ctx, deepest.AccountID).Return(false, nil).Once()
	suite.mockRepo.On("ListAllAccounts", ctx).Return(chain, nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	account := chartAccount("1110", "Operating Cash", domain.Asset, nil)
	newName := "Operating Cash USD"

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(acc domain.Account) bool {
		return acc.AccountID == account.AccountID && acc.Name == newName && acc.LastUpdatedBy == userID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, account.AccountID, dto.UpdateAccountRequest{Name: &newName}, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(newName, updated.Name)
	suite.Equal(userID, updated.LastUpdatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoFieldsIsNoOp() {
	ctx := context.Background()
	account := chartAccount("1110", "Operating Cash", domain.Asset, nil)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, account.AccountID, dto.UpdateAccountRequest{}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(account.Name, updated.Name)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	updated, err := suite.service.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{}, uuid.NewString())

	suite.Require().Error(err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	suite.Nil(updated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	account := chartAccount("1110", "Operating Cash", domain.Asset, nil)
	inactiveChild := chartAccount("1111", "Petty Cash", domain.Asset, &account.AccountID)
	inactiveChild.IsActive = false

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, account.AccountID).Return([]domain.Account{inactiveChild}, nil).Once()
	suite.mockRepo.On("DeactivateAccount", ctx, account.AccountID, userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, account.AccountID, userID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_ActiveChildren() {
	ctx := context.Background()
	account := chartAccount("1100", "Cash and Equivalents", domain.Asset, nil)
	activeChild := chartAccount("1110", "Operating Cash", domain.Asset, &account.AccountID)

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, account.AccountID).Return([]domain.Account{activeChild}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, account.AccountID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountHasActiveChildren)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NonZeroBalance() {
	ctx := context.Background()
	account := chartAccount("1110", "Operating Cash", domain.Asset, nil)
	account.Balance = decimal.RequireFromString("12.34")

	suite.mockRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, account.AccountID).Return([]domain.Account{}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, account.AccountID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountBalanceNotZero)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCalculateAccountBalance_LeafReturnsStoredBalance() {
	ctx := context.Background()
	leaf := chartAccount("1110", "Operating Cash", domain.Asset, nil)
	leaf.Balance = decimal.RequireFromString("42.00")

	suite.mockRepo.On("ListAllAccounts", ctx).Return([]domain.Account{leaf}, nil).Once()

	balance, err := suite.service.CalculateAccountBalance(ctx, leaf.AccountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("42.00")), "expected 42.00, got %s", balance)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCalculateAccountBalance_SummaryRollsUpSubtree() {
	ctx := context.Background()
	root := chartAccount("1100", "Cash and Equivalents", domain.Asset, nil)
	leafA := chartAccount("1110", "Operating Cash", domain.Asset, &root.AccountID)
	leafA.Balance = decimal.RequireFromString("250.75")
	leafB := chartAccount("1120", "Reserve Cash", domain.Asset, &root.AccountID)
	leafB.Balance = decimal.RequireFromString("100.25")
	mid := chartAccount("1130", "Restricted Cash", domain.Asset, &root.AccountID)
	grandchild := chartAccount("1131", "Escrow", domain.Asset, &mid.AccountID)
	grandchild.Balance = decimal.RequireFromString("49.00")
	sibling := chartAccount("2100", "Accrued Liabilities", domain.Liability, nil)
	sibling.Balance = decimal.RequireFromString("999.99")

	all := []domain.Account{root, leafA, leafB, mid, grandchild, sibling}
	suite.mockRepo.On("ListAllAccounts", ctx).Return(all, nil).Once()

	balance, err := suite.service.CalculateAccountBalance(ctx, root.AccountID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("400.00")), "expected 400.00, got %s", balance)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCalculateAccountBalance_UnknownAccount() {
	ctx := context.Background()

	suite.mockRepo.On("ListAllAccounts", ctx).Return([]domain.Account{}, nil).Once()

	_, err := suite.service.CalculateAccountBalance(ctx, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountTree_CorruptHierarchy() {
	ctx := context.Background()
	orphanParent := uuid.NewString()
	orphan := chartAccount("1110", "Operating Cash", domain.Asset, &orphanParent)

	suite.mockRepo.On("ListAllAccounts", ctx).Return([]domain.Account{orphan}, nil).Once()

	tree, err := suite.service.GetAccountTree(ctx)

	suite.Require().Error(err)
	suite.ErrorContains(err, "stored account hierarchy is invalid")
	suite.Nil(tree)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestListAccounts_NormalizesPagingAndNilResult() {
	ctx := context.Background()

	suite.mockRepo.On("ListAccounts", ctx, 20, 0).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, 0, -5)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Len(accounts, 0)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestListAccounts_RepoError() {
	ctx := context.Background()

	suite.mockRepo.On("ListAccounts", ctx, 20, 0).Return(nil, assert.AnError).Once()

	accounts, err := suite.service.ListAccounts(ctx, 20, 0)

	suite.Require().Error(err)
	suite.Nil(accounts)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
