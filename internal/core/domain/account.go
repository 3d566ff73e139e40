package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalSide returns the side on which accounts of this type naturally increase.
func (t AccountType) NormalSide() TransactionType {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// IsValid reports whether t is one of the defined account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// MaxAccountDepth is the maximum number of levels in the chart of accounts,
// counting a root account as level 1.
const MaxAccountDepth = 5

// Account represents a financial account within the core domain.
// Accounts form a tree via ParentAccountID; only leaf accounts accept
// postings, parent accounts aggregate their children.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (e.g., UUID)
	AccountCode     string          `json:"accountCode"`     // Unique ledger code (e.g., "1010")
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	CurrencyCode    string          `json:"currencyCode"`    // FK -> currencies.code (NON-NULL)
	ParentAccountID *string         `json:"parentAccountID"` // Nullable FK -> accounts.account_id (Self-referencing)
	Description     string          `json:"description"`     // Nullable user description
	IsActive        bool            `json:"isActive"`        // Soft delete or status flag
	AuditFields                     // Embed CreatedAt, CreatedBy, etc.
	Balance         decimal.Decimal `json:"balance"` // Persisted signed balance on the normal side
}
