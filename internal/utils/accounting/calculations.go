package accounting

import (
	"fmt"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the accounting sign convention to a journal line for
// the given account type. The result is the movement on the account's normal
// side, used when maintaining persisted balances.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, line.AccountID)
	}
	amount := line.Amount()
	if line.Side() != accountType.NormalSide() {
		amount = amount.Neg()
	}
	return amount, nil
}

// CurrencySums holds the debit and credit totals of one currency within an
// entry.
type CurrencySums struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// SumsByCurrency totals the debit and credit columns of the lines per
// currency, in exact decimal arithmetic.
func SumsByCurrency(lines []domain.JournalLine) map[string]CurrencySums {
	sums := make(map[string]CurrencySums, 2)
	for i := range lines {
		s := sums[lines[i].CurrencyCode]
		s.Debit = s.Debit.Add(lines[i].Debit)
		s.Credit = s.Credit.Add(lines[i].Credit)
		sums[lines[i].CurrencyCode] = s
	}
	return sums
}

// ValidateEntryBalance checks the double-entry invariant: within every
// currency present on the entry, the debit total equals the credit total
// exactly. Zero tolerance; no floating point is involved anywhere.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines")
	}
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return err
		}
	}
	for code, sums := range SumsByCurrency(lines) {
		if !sums.Debit.Equal(sums.Credit) {
			return fmt.Errorf("entry does not balance in %s: debits %s, credits %s",
				code, sums.Debit.String(), sums.Credit.String())
		}
	}
	return nil
}

// BalanceChanges folds the lines of an entry into per-account signed balance
// deltas on each account's normal side.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for i := range lines {
		accountType, ok := accountTypes[lines[i].AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account %s", lines[i].AccountID)
		}
		signed, err := SignedAmount(lines[i], accountType)
		if err != nil {
			return nil, err
		}
		changes[lines[i].AccountID] = changes[lines[i].AccountID].Add(signed)
	}
	return changes, nil
}
