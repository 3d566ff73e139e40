package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoanEventType enumerates the loan-lifecycle events the ledger understands.
type LoanEventType string

const (
	EventDisbursement LoanEventType = "DISBURSEMENT"
	EventRepayment    LoanEventType = "REPAYMENT"
	EventFee          LoanEventType = "FEE"
	EventWriteOff     LoanEventType = "WRITE_OFF"
)

// IsValid reports whether t is one of the defined event types.
func (t LoanEventType) IsValid() bool {
	switch t {
	case EventDisbursement, EventRepayment, EventFee, EventWriteOff:
		return true
	}
	return false
}

// ConditionOperator enumerates the comparisons a template condition may use.
type ConditionOperator string

const (
	OpEqual          ConditionOperator = "EQ"
	OpNotEqual       ConditionOperator = "NE"
	OpGreater        ConditionOperator = "GT"
	OpGreaterOrEqual ConditionOperator = "GTE"
	OpLess           ConditionOperator = "LT"
	OpLessOrEqual    ConditionOperator = "LTE"
	OpIn             ConditionOperator = "IN"
)

// IsValid reports whether o is one of the defined operators.
func (o ConditionOperator) IsValid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual, OpIn:
		return true
	}
	return false
}

// TemplateCondition is one comparison against an event field. Conditions on
// a template are evaluated in order and must all pass for the template to
// match.
type TemplateCondition struct {
	Field    string            `json:"field"`            // Event field name (e.g., "amount", "attr.fee_kind")
	Operator ConditionOperator `json:"operator"`         //
	Value    string            `json:"value"`            // Comparison operand (unused for IN)
	Values   []string          `json:"values,omitempty"` // Operands for IN
}

// TemplateLine describes one journal line the template produces. The account
// selector is either a literal account code or an "event.<attr>" reference
// resolved from the event attributes; the amount expression is evaluated
// against the event with exact decimal arithmetic.
type TemplateLine struct {
	AccountSelector string          `json:"accountSelector"` // Account code or "event.<attr>"
	Side            TransactionType `json:"side"`            // DEBIT or CREDIT
	AmountExpr      string          `json:"amountExpr"`      // e.g., "amount", "amount * 0.02", "attr.fee_amount"
	Memo            string          `json:"memo"`            // Nullable
}

// MappingTemplate translates a loan-lifecycle event into journal line drafts.
// Active templates for the event type are evaluated in priority order (lower
// first, ties by creation time); the first template whose full condition
// list passes wins.
type MappingTemplate struct {
	TemplateID string              `json:"templateID"` // Primary Key (e.g., UUID)
	Name       string              `json:"name"`
	EventType  LoanEventType       `json:"eventType"`
	Priority   int                 `json:"priority"` // Lower evaluates first
	IsActive   bool                `json:"isActive"`
	Conditions []TemplateCondition `json:"conditions"`
	Lines      []TemplateLine      `json:"lines"`
	AuditFields
}

// LoanEvent is a typed loan-lifecycle event consumed by the mapping engine.
// EntryID is set once the event has been translated and posted.
type LoanEvent struct {
	EventID      string            `json:"eventID"` // Primary Key (e.g., UUID)
	LoanID       string            `json:"loanID"`  // FK -> Loan.loanID (Not Null)
	EventType    LoanEventType     `json:"eventType"`
	Amount       decimal.Decimal   `json:"amount"` // Positive; Precise decimal type
	CurrencyCode string            `json:"currencyCode"`
	OccurredAt   time.Time         `json:"occurredAt"`
	Attributes   map[string]string `json:"attributes,omitempty"` // Event-specific extras (e.g., fee_kind)
	EntryID      *string           `json:"entryID"`              // Set once mapped and posted
	AuditFields
}

// Field resolves a condition/expression field name against the event.
// Built-in names cover the typed columns; "attr.<name>" reads from the
// attribute map.
func (e *LoanEvent) Field(name string) (string, bool) {
	switch name {
	case "amount":
		return e.Amount.String(), true
	case "currency", "currency_code":
		return e.CurrencyCode, true
	case "event_type":
		return string(e.EventType), true
	case "loan_id":
		return e.LoanID, true
	}
	if attr, ok := strings.CutPrefix(name, "attr."); ok {
		v, ok := e.Attributes[attr]
		return v, ok
	}
	return "", false
}
