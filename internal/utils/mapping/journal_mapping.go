package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:        d.EntryID,
		PeriodID:       d.PeriodID,
		EntryDate:      d.EntryDate,
		Description:    d.Description,
		CurrencyCode:   d.CurrencyCode,
		Status:         models.EntryStatus(d.Status),
		SequenceNo:     NullInt64FromPtr(d.SequenceNo),
		SourceEventID:  NullStringFromPtr(d.SourceEventID),
		PostedAt:       NullTimeFromPtr(d.PostedAt),
		PostedBy:       NullStringFromPtr(d.PostedBy),
		VoidingEntryID: NullStringFromPtr(d.VoidingEntryID),
		VoidedEntryID:  NullStringFromPtr(d.VoidedEntryID),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:        m.EntryID,
		PeriodID:       m.PeriodID,
		EntryDate:      m.EntryDate,
		Description:    m.Description,
		CurrencyCode:   m.CurrencyCode,
		Status:         domain.EntryStatus(m.Status),
		SequenceNo:     PtrFromNullInt64(m.SequenceNo),
		SourceEventID:  PtrFromNullString(m.SourceEventID),
		PostedAt:       PtrFromNullTime(m.PostedAt),
		PostedBy:       PtrFromNullString(m.PostedBy),
		VoidingEntryID: PtrFromNullString(m.VoidingEntryID),
		VoidedEntryID:  PtrFromNullString(m.VoidedEntryID),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		AccountID:      d.AccountID,
		Debit:          d.Debit,
		Credit:         d.Credit,
		CurrencyCode:   d.CurrencyCode,
		Memo:           d.Memo,
		AuditFields:    ToModelAuditFields(d.AuditFields),
		RunningBalance: d.RunningBalance,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		AccountID:      m.AccountID,
		Debit:          m.Debit,
		Credit:         m.Credit,
		CurrencyCode:   m.CurrencyCode,
		Memo:           m.Memo,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
		RunningBalance: m.RunningBalance,
	}
}

// ToDomainJournalLineSlice converts a slice of model JournalLines to domain JournalLines
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
