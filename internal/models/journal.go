package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry row.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "DRAFT"
	EntryPosted EntryStatus = "POSTED"
	EntryVoid   EntryStatus = "VOID"
)

// JournalEntry represents a journal entry row. Lines live in journal_lines.
type JournalEntry struct {
	EntryID        string         `db:"entry_id"`
	PeriodID       string         `db:"period_id"`
	EntryDate      time.Time      `db:"entry_date"`
	Description    string         `db:"description"`
	CurrencyCode   string         `db:"currency_code"`
	Status         EntryStatus    `db:"status"`
	SequenceNo     sql.NullInt64  `db:"sequence_no"` // Assigned at posting
	SourceEventID  sql.NullString `db:"source_event_id"`
	PostedAt       sql.NullTime   `db:"posted_at"`
	PostedBy       sql.NullString `db:"posted_by"`
	VoidingEntryID sql.NullString `db:"voiding_entry_id"` // Offset entry, set when voided
	VoidedEntryID  sql.NullString `db:"voided_entry_id"`  // Original entry, set on the voiding entry
	AuditFields
}

// JournalLine represents one line row of a journal entry.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	Debit        decimal.Decimal `db:"debit"`
	Credit       decimal.Decimal `db:"credit"`
	CurrencyCode string          `db:"currency_code"`
	Memo         string          `db:"memo"`
	AuditFields
	RunningBalance decimal.Decimal `db:"running_balance"` // Account balance after this line
}
