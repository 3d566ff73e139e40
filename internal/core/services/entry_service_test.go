package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/dto"
)

// MockEntryRepository is a mock type for the EntryRepositoryWithTx interface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, periodID *string, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, periodID, status, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.JournalLine), args.Error(1)
}

func (m *MockEntryRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var lines []domain.JournalLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.JournalLine)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return lines, token, args.Error(2)
}

func (m *MockEntryRepository) SaveDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, postedBy, postedAt, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) SaveVoidingEntry(ctx context.Context, voiding domain.JournalEntry, voidedEntryID string, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error) {
	args := m.Called(ctx, voiding, voidedEntryID, balanceChanges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockAccountService is a mock type for the AccountSvcFacade interface
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

// MockPeriodService is a mock type for the PeriodSvcFacade interface
type MockPeriodService struct {
	mock.Mock
}

func (m *MockPeriodService) GetPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodService) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodService) EnsureOpenFor(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodService) CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, creatorUserID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodService) ClosePeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, periodID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

// --- Test Suite Setup ---

type EntryServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockEntryRepository
	mockAccountSvc *MockAccountService
	mockPeriodSvc  *MockPeriodService
	service        portssvc.EntrySvcFacade

	cash       domain.Account
	receivable domain.Account
	tree       *domain.AccountTree
	period     *domain.AccountingPeriod
}

func (suite *EntryServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockEntryRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockPeriodSvc = new(MockPeriodService)
	suite.service = services.NewEntryService(suite.mockRepo, suite.mockAccountSvc, suite.mockPeriodSvc)

	suite.cash = domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1110",
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.receivable = domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1140",
		Name:         "Loans Receivable",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}

	tree, err := domain.NewAccountTree([]domain.Account{suite.cash, suite.receivable})
	suite.Require().NoError(err)
	suite.tree = tree

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	suite.period = &domain.AccountingPeriod{
		PeriodID:       uuid.NewString(),
		Name:           "2026-08",
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, 0),
		Status:         domain.PeriodOpen,
		NextSequenceNo: 1,
	}
}

func (suite *EntryServiceTestSuite) accountsByID() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cash.AccountID:       suite.cash,
		suite.receivable.AccountID: suite.receivable,
	}
}

func (suite *EntryServiceTestSuite) balancedRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntryDate:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Description:  "Loan disbursement",
		CurrencyCode: "USD",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.receivable.AccountID, Debit: decimal.RequireFromString("1000.00"), CurrencyCode: "USD"},
			{AccountID: suite.cash.AccountID, Credit: decimal.RequireFromString("1000.00"), CurrencyCode: "USD"},
		},
	}
}

func (suite *EntryServiceTestSuite) expectAccountValidation(ctx context.Context) {
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(suite.accountsByID(), nil).Once()
	suite.mockAccountSvc.On("GetAccountTree", ctx).Return(suite.tree, nil).Once()
}

// --- Test Cases ---

func (suite *EntryServiceTestSuite) TestCreateDraft_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := suite.balancedRequest()

	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, req.EntryDate).Return(suite.period, nil).Once()
	suite.expectAccountValidation(ctx)
	suite.mockRepo.On("SaveDraftEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	entry, err := suite.service.CreateDraft(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.Equal(domain.EntryDraft, entry.Status)
	suite.Equal(suite.period.PeriodID, entry.PeriodID)
	suite.Nil(entry.SequenceNo)
	suite.Len(entry.Lines, 2)
	suite.Equal(entry.EntryID, entry.Lines[0].EntryID)
	suite.Equal(userID, entry.CreatedBy)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockPeriodSvc.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestCreateDraft_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[1].Credit = decimal.RequireFromString("900.00")

	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, req.EntryDate).Return(suite.period, nil).Once()

	entry, err := suite.service.CreateDraft(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrUnbalancedEntry)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveDraftEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateDraft_MultiCurrencyBalanced() {
	ctx := context.Background()
	userID := uuid.NewString()

	eurCash := domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1111",
		Name:         "EUR Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
	eurClearing := domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "2150",
		Name:         "EUR Clearing",
		AccountType:  domain.Liability,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
	accounts := suite.accountsByID()
	accounts[eurCash.AccountID] = eurCash
	accounts[eurClearing.AccountID] = eurClearing
	tree, err := domain.NewAccountTree([]domain.Account{suite.cash, suite.receivable, eurCash, eurClearing})
	suite.Require().NoError(err)

	req := suite.balancedRequest()
	req.Lines = append(req.Lines,
		dto.CreateEntryLineRequest{AccountID: eurCash.AccountID, Debit: decimal.RequireFromString("50.00"), CurrencyCode: "EUR"},
		dto.CreateEntryLineRequest{AccountID: eurClearing.AccountID, Credit: decimal.RequireFromString("50.00"), CurrencyCode: "EUR"},
	)

	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, req.EntryDate).Return(suite.period, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockAccountSvc.On("GetAccountTree", ctx).Return(tree, nil).Once()
	suite.mockRepo.On("SaveDraftEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	entry, err := suite.service.CreateDraft(ctx, req, userID)

	suite.Require().NoError(err)
	suite.Len(entry.Lines, 4)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestCreateDraft_ClosedPeriod() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, req.EntryDate).Return(nil, apperrors.ErrClosedPeriod).Once()

	entry, err := suite.service.CreateDraft(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrClosedPeriod)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveDraftEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateDraft_ExplicitPeriodMustContainDate() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.PeriodID = &suite.period.PeriodID
	req.EntryDate = suite.period.EndDate.AddDate(0, 0, 5)

	suite.mockPeriodSvc.On("GetPeriodByID", ctx, suite.period.PeriodID).Return(suite.period, nil).Once()

	entry, err := suite.service.CreateDraft(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *EntryServiceTestSuite) TestCreateDraft_SummaryAccountRejected() {
	ctx := context.Background()

	parent := domain.Account{
		AccountID:    uuid.NewString(),
		AccountCode:  "1100",
		Name:         "Cash and Bank",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	child := suite.cash
	child.ParentAccountID = &parent.AccountID

	accounts := map[string]domain.Account{
		parent.AccountID:           parent,
		suite.receivable.AccountID: suite.receivable,
	}
	tree, err := domain.NewAccountTree([]domain.Account{parent, child, suite.receivable})
	suite.Require().NoError(err)

	req := suite.balancedRequest()
	req.Lines[1].AccountID = parent.AccountID

	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, req.EntryDate).Return(suite.period, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockAccountSvc.On("GetAccountTree", ctx).Return(tree, nil).Once()

	entry, err := suite.service.CreateDraft(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrInvalidAccount)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveDraftEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateDraft_CurrencyMismatch() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[0].CurrencyCode = "EUR"
	req.Lines[1].CurrencyCode = "EUR"

	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, req.EntryDate).Return(suite.period, nil).Once()
	suite.expectAccountValidation(ctx)

	entry, err := suite.service.CreateDraft(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
}

func (suite *EntryServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	entryID := uuid.NewString()

	draft := &domain.JournalEntry{
		EntryID:      entryID,
		PeriodID:     suite.period.PeriodID,
		EntryDate:    time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		Description:  "Manual adjustment",
		CurrencyCode: "USD",
		Status:       domain.EntryDraft,
	}
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: suite.receivable.AccountID, Debit: decimal.RequireFromString("250.00"), CurrencyCode: "USD"},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: suite.cash.AccountID, Credit: decimal.RequireFromString("250.00"), CurrencyCode: "USD"},
	}

	seq := int64(7)
	posted := *draft
	posted.Status = domain.EntryPosted
	posted.SequenceNo = &seq

	suite.mockRepo.On("FindEntryByID", ctx, entryID).Return(draft, nil).Once()
	suite.mockRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()
	suite.expectAccountValidation(ctx)

	// Both accounts are assets: the debited account gains, the credited
	// account loses.
	suite.mockRepo.On("PostEntry", ctx, entryID, userID, mock.AnythingOfType("time.Time"),
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[suite.receivable.AccountID].Equal(decimal.RequireFromString("250.00")) &&
				changes[suite.cash.AccountID].Equal(decimal.RequireFromString("-250.00"))
		})).Return(&posted, nil).Once()

	result, err := suite.service.Post(ctx, entryID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Equal(domain.EntryPosted, result.Status)
	suite.Require().NotNil(result.SequenceNo)
	suite.Equal(int64(7), *result.SequenceNo)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestPost_NotDraft() {
	ctx := context.Background()
	entryID := uuid.NewString()
	posted := &domain.JournalEntry{EntryID: entryID, Status: domain.EntryPosted}

	suite.mockRepo.On("FindEntryByID", ctx, entryID).Return(posted, nil).Once()

	result, err := suite.service.Post(ctx, entryID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrEntryNotDraft)
	suite.mockRepo.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestVoid_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	entryID := uuid.NewString()

	original := &domain.JournalEntry{
		EntryID:      entryID,
		PeriodID:     suite.period.PeriodID,
		EntryDate:    time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		Description:  "Fee charged",
		CurrencyCode: "USD",
		Status:       domain.EntryPosted,
	}
	originalLines := []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: suite.receivable.AccountID, Debit: decimal.RequireFromString("40.00"), CurrencyCode: "USD"},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: suite.cash.AccountID, Credit: decimal.RequireFromString("40.00"), CurrencyCode: "USD"},
	}

	suite.mockRepo.On("FindEntryByID", ctx, entryID).Return(original, nil).Once()
	suite.mockRepo.On("FindLinesByEntryID", ctx, entryID).Return(originalLines, nil).Once()
	suite.mockPeriodSvc.On("EnsureOpenFor", ctx, mock.AnythingOfType("time.Time")).Return(suite.period, nil).Once()
	suite.expectAccountValidation(ctx)

	voidingResult := &domain.JournalEntry{
		EntryID:       uuid.NewString(),
		Status:        domain.EntryPosted,
		VoidedEntryID: &original.EntryID,
	}

	// The offsetting entry must swap each line's sides and link back to the
	// original.
	suite.mockRepo.On("SaveVoidingEntry", ctx,
		mock.MatchedBy(func(voiding domain.JournalEntry) bool {
			if voiding.VoidedEntryID == nil || *voiding.VoidedEntryID != entryID {
				return false
			}
			if len(voiding.Lines) != 2 {
				return false
			}
			return voiding.Lines[0].Credit.Equal(decimal.RequireFromString("40.00")) &&
				voiding.Lines[1].Debit.Equal(decimal.RequireFromString("40.00"))
		}),
		entryID,
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[suite.receivable.AccountID].Equal(decimal.RequireFromString("-40.00")) &&
				changes[suite.cash.AccountID].Equal(decimal.RequireFromString("40.00"))
		})).Return(voidingResult, nil).Once()

	result, err := suite.service.Void(ctx, entryID, userID, dto.VoidEntryRequest{Reason: "duplicate charge"})

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Require().NotNil(result.VoidedEntryID)
	suite.Equal(entryID, *result.VoidedEntryID)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestVoid_NotPosted() {
	ctx := context.Background()
	entryID := uuid.NewString()
	draft := &domain.JournalEntry{EntryID: entryID, Status: domain.EntryDraft}

	suite.mockRepo.On("FindEntryByID", ctx, entryID).Return(draft, nil).Once()

	result, err := suite.service.Void(ctx, entryID, uuid.NewString(), dto.VoidEntryRequest{Reason: "nope"})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrEntryNotPosted)
}

func (suite *EntryServiceTestSuite) TestVoid_VoidingEntryRejected() {
	ctx := context.Background()
	entryID := uuid.NewString()
	originalID := uuid.NewString()
	voiding := &domain.JournalEntry{
		EntryID:       entryID,
		Status:        domain.EntryPosted,
		VoidedEntryID: &originalID,
	}

	suite.mockRepo.On("FindEntryByID", ctx, entryID).Return(voiding, nil).Once()

	result, err := suite.service.Void(ctx, entryID, uuid.NewString(), dto.VoidEntryRequest{Reason: "void the void"})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *EntryServiceTestSuite) TestListEntries_InvalidStatus() {
	ctx := context.Background()
	bad := "SETTLED"

	result, err := suite.service.ListEntries(ctx, dto.ListEntriesParams{Status: &bad})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}
