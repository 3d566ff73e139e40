package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance holds posted debit and credit totals for one account.
type AccountBalance struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// TrialBalanceRow represents a single row in a trial balance report.
// Summary accounts carry the rolled-up totals of their subtree.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Depth       int             `json:"depth"` // 1 for root accounts
	IsLeaf      bool            `json:"isLeaf"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"` // Signed on the account's normal side
}

// AccountActivityRow is one posted line on an account with the running balance.
type AccountActivityRow struct {
	EntryID     string          `json:"entryID"`
	SequenceNo  int64           `json:"sequenceNo"`
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"` // Running balance after this line
}

// PeriodSummaryRow aggregates posted activity for one period.
type PeriodSummaryRow struct {
	PeriodID    string          `json:"periodID"`
	PeriodName  string          `json:"periodName"`
	Status      PeriodStatus    `json:"status"`
	EntryCount  int64           `json:"entryCount"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// CellKind tells the exporters how to serialize a report cell.
type CellKind string

const (
	CellText    CellKind = "text"
	CellDecimal CellKind = "decimal"
	CellInteger CellKind = "integer"
	CellDate    CellKind = "date"
)

// ReportColumn describes one column of a generic report.
type ReportColumn struct {
	Key   string   `json:"key"`   // Stable machine name (e.g., "debit")
	Label string   `json:"label"` // Human heading (e.g., "Debit")
	Kind  CellKind `json:"kind"`
}

// ReportCell is one already-rendered cell value. Decimal cells hold an
// exact decimal string, so no exporter ever passes a monetary amount
// through a float.
type ReportCell struct {
	Kind  CellKind `json:"kind"`
	Value string   `json:"value"`
}

// TextCell builds a text cell.
func TextCell(v string) ReportCell {
	return ReportCell{Kind: CellText, Value: v}
}

// DecimalCell builds a decimal cell rendered at the value's own scale, so
// an amount carrying two decimal places exports as "1234.50", not "1234.5".
func DecimalCell(d decimal.Decimal) ReportCell {
	places := -d.Exponent()
	if places < 0 {
		places = 0
	}
	return ReportCell{Kind: CellDecimal, Value: d.StringFixed(places)}
}

// IntegerCell builds an integer cell.
func IntegerCell(n int64) ReportCell {
	return ReportCell{Kind: CellInteger, Value: decimal.NewFromInt(n).String()}
}

// DateCell builds a date cell in ISO form.
func DateCell(t time.Time) ReportCell {
	return ReportCell{Kind: CellDate, Value: t.Format("2006-01-02")}
}

// ReportData is the format-independent shape every report reduces to before
// export. Column order is significant and preserved by all exporters.
type ReportData struct {
	Title       string         `json:"title"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Columns     []ReportColumn `json:"columns"`
	Rows        [][]ReportCell `json:"rows"`
}
