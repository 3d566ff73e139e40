package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelAccrualBatch converts a domain AccrualBatch to its model
func ToModelAccrualBatch(d domain.AccrualBatch) models.AccrualBatch {
	return models.AccrualBatch{
		BatchID:       d.BatchID,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		Status:        models.AccrualBatchStatus(d.Status),
		RunAt:         d.RunAt,
		RunBy:         d.RunBy,
		FailureDetail: NullStringFromPtr(d.FailureDetail),
		EntryCount:    d.EntryCount,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccrualBatch converts a model AccrualBatch to its domain form
func ToDomainAccrualBatch(m models.AccrualBatch) domain.AccrualBatch {
	return domain.AccrualBatch{
		BatchID:       m.BatchID,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Status:        domain.AccrualBatchStatus(m.Status),
		RunAt:         m.RunAt,
		RunBy:         m.RunBy,
		FailureDetail: PtrFromNullString(m.FailureDetail),
		EntryCount:    m.EntryCount,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccrualBatchSlice converts model batches to domain batches
func ToDomainAccrualBatchSlice(ms []models.AccrualBatch) []domain.AccrualBatch {
	ds := make([]domain.AccrualBatch, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccrualBatch(m)
	}
	return ds
}

// ToDomainAccrualBatchEntry converts a model batch-entry link to its domain form
func ToDomainAccrualBatchEntry(m models.AccrualBatchEntry) domain.AccrualBatchEntry {
	return domain.AccrualBatchEntry{
		BatchID:     m.BatchID,
		EntryID:     m.EntryID,
		LoanID:      m.LoanID,
		AccrualDate: m.AccrualDate,
	}
}
