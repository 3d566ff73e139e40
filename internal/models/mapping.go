package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// MappingTemplate represents a mapping template row. Conditions and line
// templates live in their own ordered child tables.
type MappingTemplate struct {
	TemplateID string `db:"template_id"`
	Name       string `db:"name"`
	EventType  string `db:"event_type"`
	Priority   int    `db:"priority"` // Lower evaluates first
	IsActive   bool   `db:"is_active"`
	AuditFields
}

// TemplateCondition represents one ordered condition row of a template.
type TemplateCondition struct {
	TemplateID string         `db:"template_id"`
	Position   int            `db:"position"` // Evaluation order within the template
	Field      string         `db:"field"`
	Operator   string         `db:"operator"`
	Value      sql.NullString `db:"value"`
	Values     []string       `db:"match_values"` // Operands for IN, stored as text[]
}

// TemplateLine represents one ordered line template row.
type TemplateLine struct {
	TemplateID      string `db:"template_id"`
	Position        int    `db:"position"`
	AccountSelector string `db:"account_selector"`
	Side            string `db:"side"`
	AmountExpr      string `db:"amount_expr"`
	Memo            string `db:"memo"`
}

// LoanEvent represents a loan-lifecycle event row.
type LoanEvent struct {
	EventID      string            `db:"event_id"`
	LoanID       string            `db:"loan_id"`
	EventType    string            `db:"event_type"`
	Amount       decimal.Decimal   `db:"amount"`
	CurrencyCode string            `db:"currency_code"`
	OccurredAt   time.Time         `db:"occurred_at"`
	Attributes   map[string]string `db:"attributes"` // JSONB
	EntryID      sql.NullString    `db:"entry_id"`   // Set once mapped and posted
	AuditFields
}
