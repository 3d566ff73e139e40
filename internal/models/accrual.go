package models

import (
	"database/sql"
	"time"
)

// AccrualBatchStatus indicates the state of an accrual batch row.
type AccrualBatchStatus string

const (
	BatchRunning    AccrualBatchStatus = "RUNNING"
	BatchCompleted  AccrualBatchStatus = "COMPLETED"
	BatchIncomplete AccrualBatchStatus = "INCOMPLETE"
)

// AccrualBatch represents an accrual batch run row. A partial unique index
// on (start_date, end_date) for RUNNING/COMPLETED rows enforces per-range
// idempotency at the schema level.
type AccrualBatch struct {
	BatchID       string             `db:"batch_id"`
	StartDate     time.Time          `db:"start_date"` // Inclusive
	EndDate       time.Time          `db:"end_date"`   // Exclusive
	Status        AccrualBatchStatus `db:"status"`
	RunAt         time.Time          `db:"run_at"`
	RunBy         string             `db:"run_by"`
	FailureDetail sql.NullString     `db:"failure_detail"`
	EntryCount    int                `db:"entry_count"`
	AuditFields
}

// AccrualBatchEntry links one posted accrual entry to its batch, loan and day.
type AccrualBatchEntry struct {
	BatchID     string    `db:"batch_id"`
	EntryID     string    `db:"entry_id"`
	LoanID      string    `db:"loan_id"`
	AccrualDate time.Time `db:"accrual_date"`
}
