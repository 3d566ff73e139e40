package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// AccountType is one of the five fundamental accounting categories. The
// category decides which side of an entry increases the balance.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is a row in the accounts table. ParentAccountID is a nullable self
// reference forming the chart hierarchy. Balance is the persisted running
// balance, signed on the account's normal side.
type Account struct {
	AccountID       string          `db:"account_id"`
	AccountCode     string          `db:"account_code"`
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	CurrencyCode    string          `db:"currency_code"`
	ParentAccountID sql.NullString  `db:"parent_account_id"`
	Description     string          `db:"description"`
	IsActive        bool            `db:"is_active"`
	AuditFields
	Balance decimal.Decimal `db:"balance"`
}
