package domain

import (
	"errors"
	"time"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "DRAFT"
	EntryPosted EntryStatus = "POSTED"
	EntryVoid   EntryStatus = "VOID"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple journal lines. Once posted an entry is immutable; correcting it
// requires a voiding entry with the sides swapped, never an update in place.
type JournalEntry struct {
	EntryID        string      `json:"entryID"`        // Primary Key (e.g., UUID)
	PeriodID       string      `json:"periodID"`       // FK -> AccountingPeriod.periodID (Not Null)
	EntryDate      time.Time   `json:"entryDate"`      // Date the event occurred
	Description    string      `json:"description"`    // Nullable user description
	CurrencyCode   string      `json:"currencyCode"`   // Primary currency of the entry (Not Null)
	Status         EntryStatus `json:"status"`         // DRAFT until posted
	SequenceNo     *int64      `json:"sequenceNo"`     // Assigned at posting; unique within the period
	SourceEventID  *string     `json:"sourceEventID"`  // Loan event or accrual batch that produced this entry
	PostedAt       *time.Time  `json:"postedAt"`       // Set at posting
	PostedBy       *string     `json:"postedBy"`       // UserID Reference, set at posting
	VoidingEntryID *string     `json:"voidingEntryID"` // On a voided entry: the offsetting entry
	VoidedEntryID  *string     `json:"voidedEntryID"`  // On a voiding entry: the original it offsets
	AuditFields
	Lines []JournalLine `json:"lines,omitempty"` // Often loaded separately
}

// IsDraft reports whether the entry can still be modified or posted.
func (j *JournalEntry) IsDraft() bool {
	return j.Status == EntryDraft
}

// IsPosted reports whether the entry has been committed to the ledger.
func (j *JournalEntry) IsPosted() bool {
	return j.Status == EntryPosted
}

// IsVoid reports whether the entry has been offset by a voiding entry.
func (j *JournalEntry) IsVoid() bool {
	return j.Status == EntryVoid
}

// Validate checks the structural invariants of the entry and its lines:
// at least two lines, every line individually valid. Balance is checked
// separately because it needs per-currency sums.
func (j *JournalEntry) Validate() error {
	if j.PeriodID == "" {
		return errors.New("entry has no period")
	}
	if len(j.Lines) < 2 {
		return errors.New("entry must have at least two lines")
	}
	for i := range j.Lines {
		if err := j.Lines[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsMultiCurrency reports whether the entry's lines span more than one currency.
func (j *JournalEntry) IsMultiCurrency() bool {
	if len(j.Lines) == 0 {
		return false
	}
	first := j.Lines[0].CurrencyCode
	for i := range j.Lines[1:] {
		if j.Lines[i+1].CurrencyCode != first {
			return true
		}
	}
	return false
}

// Currencies returns the distinct currency codes present on the entry's
// lines, in first-seen order.
func (j *JournalEntry) Currencies() []string {
	var codes []string
	seen := make(map[string]bool, 2)
	for i := range j.Lines {
		code := j.Lines[i].CurrencyCode
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
