package models

import (
	"database/sql"
	"time"
)

// PeriodStatus indicates the lifecycle state of an accounting period row.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod represents an accounting period row.
type AccountingPeriod struct {
	PeriodID       string         `db:"period_id"`
	Name           string         `db:"name"`
	StartDate      time.Time      `db:"start_date"` // Inclusive
	EndDate        time.Time      `db:"end_date"`   // Exclusive
	Status         PeriodStatus   `db:"status"`
	ClosedAt       sql.NullTime   `db:"closed_at"`
	ClosedBy       sql.NullString `db:"closed_by"`
	NextSequenceNo int64          `db:"next_sequence_no"` // Claimed under the period row lock
	AuditFields
}
