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

// ErrAccountHasPostings indicates an account with posted lines cannot become
// a parent, since summary accounts never accept postings.
var ErrAccountHasPostings = errors.New("account already has posted lines")

// ErrAccountHasActiveChildren indicates a deactivation attempt on an account
// whose children are still active.
var ErrAccountHasActiveChildren = errors.New("account has active children")

// ErrAccountBalanceNotZero indicates a deactivation attempt on an account
// that still carries a balance.
var ErrAccountBalanceNotZero = errors.New("account balance is not zero")

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, currencyRepo portsrepo.CurrencyReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account. The code must be unique, the
// currency known, and the parent (if any) an existing account without posted
// lines. The resulting hierarchy is re-validated as a whole, which catches
// excess depth and cycles in one walk.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("invalid account type %q: %w", req.AccountType, apperrors.ErrValidation)
	}
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("unknown currency %s: %w", req.CurrencyCode, apperrors.ErrValidation)
		}
		s.LogError(ctx, err, "Failed to validate currency code",
			slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to validate currency code: %w", err)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, req.AccountCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code uniqueness",
			slog.String("account_code", req.AccountCode))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("account code %s: %w", req.AccountCode, apperrors.ErrDuplicate)
	}

	if req.ParentAccountID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("parent account %s: %w", *req.ParentAccountID, apperrors.ErrValidation)
			}
			s.LogError(ctx, err, "Failed to find parent account",
				slog.String("parent_id", *req.ParentAccountID))
			return nil, fmt.Errorf("failed to find parent account: %w", err)
		}
		hasPostings, err := s.accountRepo.HasPostedLines(ctx, parent.AccountID)
		if err != nil {
			s.LogError(ctx, err, "Failed to check parent postings",
				slog.String("parent_id", parent.AccountID))
			return nil, fmt.Errorf("failed to check parent postings: %w", err)
		}
		if hasPostings {
			return nil, fmt.Errorf("parent account %s: %w", parent.AccountCode, ErrAccountHasPostings)
		}
	}

	now := time.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		AccountCode:     req.AccountCode,
		Name:            req.Name,
		AccountType:     req.AccountType,
		CurrencyCode:    req.CurrencyCode,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		IsActive:        true,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// Rebuild the tree with the candidate included before touching the
	// database. NewAccountTree rejects depth over the limit and cycles.
	all, err := s.accountRepo.ListAllAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for tree validation")
		return nil, fmt.Errorf("failed to load accounts for tree validation: %w", err)
	}
	if _, err := domain.NewAccountTree(append(all, account)); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("account_code", account.AccountCode))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID",
				slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code",
				slog.String("account_code", accountCode))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs",
			slog.String("account_ids", fmt.Sprintf("%v", accountIDs)))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts",
			slog.Int("limit", limit),
			slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// GetAccountTree assembles the full chart of accounts as a validated arena.
func (s *accountService) GetAccountTree(ctx context.Context) (*domain.AccountTree, error) {
	all, err := s.accountRepo.ListAllAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for tree")
		return nil, fmt.Errorf("failed to load accounts for tree: %w", err)
	}
	tree, err := domain.NewAccountTree(all)
	if err != nil {
		// A persisted hierarchy that fails validation is data corruption,
		// not caller error.
		s.LogError(ctx, err, "Stored account hierarchy is invalid")
		return nil, fmt.Errorf("stored account hierarchy is invalid: %w", err)
	}
	return tree, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		s.LogDebug(ctx, "No fields provided for account update",
			slog.String("account_id", accountID))
		return account, nil
	}

	now := time.Now()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account",
			slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully",
		slog.String("account_id", account.AccountID))
	return account, nil
}

// DeactivateAccount marks an account inactive. Accounts with active children
// or a non-zero balance stay active; historical postings are unaffected.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	children, err := s.accountRepo.FindChildAccounts(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load child accounts",
			slog.String("account_id", accountID))
		return fmt.Errorf("failed to load child accounts: %w", err)
	}
	for i := range children {
		if children[i].IsActive {
			return fmt.Errorf("account %s: %w", account.AccountCode, ErrAccountHasActiveChildren)
		}
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("account %s: %w", account.AccountCode, ErrAccountBalanceNotZero)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account",
			slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deactivated successfully",
		slog.String("account_id", accountID))
	return nil
}

// CalculateAccountBalance returns the persisted balance for a leaf account
// and the rolled-up subtree balance for a summary account.
func (s *accountService) CalculateAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	tree, err := s.GetAccountTree(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	account, ok := tree.Get(accountID)
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	if tree.IsLeaf(accountID) {
		return account.Balance, nil
	}

	// Non-leaf accounts never post, so summing every node in the subtree
	// counts each leaf exactly once.
	total := decimal.Zero
	stack := []string{accountID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, _ := tree.Get(id)
		total = total.Add(node.Balance)
		stack = append(stack, tree.Children(id)...)
	}
	return total, nil
}
