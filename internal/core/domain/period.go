package domain

import "time"

// PeriodStatus indicates the lifecycle state of an accounting period.
// The only transition is OPEN -> CLOSED; there is no reopen.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod is a posting window. Entries are only accepted into open
// periods; closing is one-directional, corrections to a closed period go
// into a later open period.
type AccountingPeriod struct {
	PeriodID       string       `json:"periodID"`  // Primary Key (e.g., UUID)
	Name           string       `json:"name"`      // e.g., "2025-11"
	StartDate      time.Time    `json:"startDate"` // Inclusive
	EndDate        time.Time    `json:"endDate"`   // Exclusive
	Status         PeriodStatus `json:"status"`
	ClosedAt       *time.Time   `json:"closedAt"` // Set when closed
	ClosedBy       *string      `json:"closedBy"` // UserID Reference, set when closed
	NextSequenceNo int64        `json:"-"`        // Next posting sequence; claimed under the period row lock
	AuditFields
}

// IsOpen reports whether the period still accepts postings.
func (p *AccountingPeriod) IsOpen() bool {
	return p.Status == PeriodOpen
}

// Contains reports whether d falls inside the period's [start, end) window.
func (p *AccountingPeriod) Contains(d time.Time) bool {
	return !d.Before(p.StartDate) && d.Before(p.EndDate)
}

// Overlaps reports whether the [start, end) window of the other period
// intersects this one.
func (p *AccountingPeriod) Overlaps(start, end time.Time) bool {
	return p.StartDate.Before(end) && start.Before(p.EndDate)
}
