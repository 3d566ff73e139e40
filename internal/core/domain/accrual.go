package domain

import "time"

// AccrualBatchStatus indicates the state of an accrual batch run.
type AccrualBatchStatus string

const (
	BatchRunning    AccrualBatchStatus = "RUNNING"
	BatchCompleted  AccrualBatchStatus = "COMPLETED"
	BatchIncomplete AccrualBatchStatus = "INCOMPLETE"
)

// AccrualBatch records one interest-accrual run over a date range. A range
// can only ever complete once; re-running a completed range is rejected
// rather than double-posting. An interrupted run stays INCOMPLETE and must
// be resumed explicitly, which only processes the days it missed.
type AccrualBatch struct {
	BatchID       string             `json:"batchID"`   // Primary Key (e.g., UUID)
	StartDate     time.Time          `json:"startDate"` // Inclusive
	EndDate       time.Time          `json:"endDate"`   // Exclusive
	Status        AccrualBatchStatus `json:"status"`
	RunAt         time.Time          `json:"runAt"`
	RunBy         string             `json:"runBy"`                   // UserID Reference
	FailureDetail *string            `json:"failureDetail,omitempty"` // Why the batch stopped, when INCOMPLETE
	EntryCount    int                `json:"entryCount"`              // Posted entries produced so far
	AuditFields
}

// IsResumable reports whether the batch can be picked up again.
func (b *AccrualBatch) IsResumable() bool {
	return b.Status == BatchIncomplete
}

// AccrualBatchEntry links one posted accrual entry to the batch, loan and
// day that produced it. The (batch, loan, day) triple is how a resumed run
// knows which work is already committed.
type AccrualBatchEntry struct {
	BatchID     string    `json:"batchID"`
	EntryID     string    `json:"entryID"`
	LoanID      string    `json:"loanID"`
	AccrualDate time.Time `json:"accrualDate"`
}
