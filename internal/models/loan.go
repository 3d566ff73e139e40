package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// LoanStatus indicates the lifecycle state of a loan row.
type LoanStatus string

const (
	LoanPending    LoanStatus = "PENDING"
	LoanActive     LoanStatus = "ACTIVE"
	LoanClosed     LoanStatus = "CLOSED"
	LoanWrittenOff LoanStatus = "WRITTEN_OFF"
)

// Loan represents a loan row the ledger accrues interest against.
type Loan struct {
	LoanID               string          `db:"loan_id"`
	ReferenceCode        string          `db:"reference_code"` // Unique human-facing code
	BorrowerName         string          `db:"borrower_name"`
	Principal            decimal.Decimal `db:"principal"`
	OutstandingPrincipal decimal.Decimal `db:"outstanding_principal"`
	AnnualRate           decimal.Decimal `db:"annual_rate"`
	DayCountBasis        int             `db:"day_count_basis"` // 360 or 365
	CurrencyCode         string          `db:"currency_code"`
	Status               LoanStatus      `db:"status"`
	DisbursedAt          sql.NullTime    `db:"disbursed_at"`
	AuditFields
}
