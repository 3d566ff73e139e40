package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus indicates the lifecycle state of a loan.
type LoanStatus string

const (
	LoanPending    LoanStatus = "PENDING"
	LoanActive     LoanStatus = "ACTIVE"
	LoanClosed     LoanStatus = "CLOSED"
	LoanWrittenOff LoanStatus = "WRITTEN_OFF"
)

// Day-count bases supported for interest accrual.
const (
	Basis360 = 360
	Basis365 = 365
)

// Loan is the servicing-side record the ledger accrues interest against.
// Monetary movement lives entirely in journal entries; the loan row only
// tracks terms and outstanding principal for the accrual formula.
type Loan struct {
	LoanID               string          `json:"loanID"`        // Primary Key (e.g., UUID)
	ReferenceCode        string          `json:"referenceCode"` // Unique human-facing code (e.g., "LN-2025-0001")
	BorrowerName         string          `json:"borrowerName"`
	Principal            decimal.Decimal `json:"principal"`            // Original principal
	OutstandingPrincipal decimal.Decimal `json:"outstandingPrincipal"` // Reduced by repayments
	AnnualRate           decimal.Decimal `json:"annualRate"`           // e.g., 0.125000 for 12.5%
	DayCountBasis        int             `json:"dayCountBasis"`        // 360 or 365
	CurrencyCode         string          `json:"currencyCode"`         // FK -> currencies.code (NON-NULL)
	Status               LoanStatus      `json:"status"`
	DisbursedAt          *time.Time      `json:"disbursedAt"` // Set on disbursement
	AuditFields
}

// IsAccruing reports whether the loan should earn interest.
func (l *Loan) IsAccruing() bool {
	return l.Status == LoanActive && l.OutstandingPrincipal.IsPositive()
}

// InterestFor computes accrued interest over elapsed days:
// outstanding principal x annual rate x days / day-count basis, rounded to
// 4 places. Exact decimal arithmetic throughout.
func (l *Loan) InterestFor(days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	basis := l.DayCountBasis
	if basis != Basis360 && basis != Basis365 {
		basis = Basis365
	}
	interest := l.OutstandingPrincipal.
		Mul(l.AnnualRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(basis)))
	return interest.Round(4)
}

// DailyInterest computes one day of accrued interest.
func (l *Loan) DailyInterest() decimal.Decimal {
	return l.InterestFor(1)
}
