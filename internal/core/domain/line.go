package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a journal line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Opposite returns the other side.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// JournalLine represents a single line item within a JournalEntry, affecting
// one account. Exactly one of Debit or Credit is non-zero on a valid line.
type JournalLine struct {
	LineID       string          `json:"lineID"`       // Primary Key (e.g., UUID)
	EntryID      string          `json:"entryID"`      // FK -> JournalEntry.entryID (Not Null)
	AccountID    string          `json:"accountID"`    // FK -> Account.accountID (Not Null)
	Debit        decimal.Decimal `json:"debit"`        // Positive or zero; Precise decimal type
	Credit       decimal.Decimal `json:"credit"`       // Positive or zero; Precise decimal type
	CurrencyCode string          `json:"currencyCode"` // Currency of this line (Not Null)
	Memo         string          `json:"memo"`         // Nullable
	AuditFields
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line is applied
}

// Validate checks the single-line invariants: an account and currency are
// set, and exactly one of debit/credit carries a positive amount.
func (l *JournalLine) Validate() error {
	if l.AccountID == "" {
		return errors.New("line has no account")
	}
	if l.CurrencyCode == "" {
		return errors.New("line has no currency")
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return errors.New("line amounts must not be negative")
	}
	debitSet := l.Debit.IsPositive()
	creditSet := l.Credit.IsPositive()
	if debitSet == creditSet {
		return errors.New("line must have exactly one of debit or credit set")
	}
	return nil
}

// Side returns which side of the entry this line sits on. It assumes the
// line already passed Validate.
func (l *JournalLine) Side() TransactionType {
	if l.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the non-zero amount of the line regardless of side.
func (l *JournalLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}
