package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelAccountingPeriod converts a domain AccountingPeriod to its model
func ToModelAccountingPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		PeriodID:       d.PeriodID,
		Name:           d.Name,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		Status:         models.PeriodStatus(d.Status),
		ClosedAt:       NullTimeFromPtr(d.ClosedAt),
		ClosedBy:       NullStringFromPtr(d.ClosedBy),
		NextSequenceNo: d.NextSequenceNo,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccountingPeriod converts a model AccountingPeriod to its domain form
func ToDomainAccountingPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		PeriodID:       m.PeriodID,
		Name:           m.Name,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Status:         domain.PeriodStatus(m.Status),
		ClosedAt:       PtrFromNullTime(m.ClosedAt),
		ClosedBy:       PtrFromNullString(m.ClosedBy),
		NextSequenceNo: m.NextSequenceNo,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountingPeriodSlice converts model periods to domain periods
func ToDomainAccountingPeriodSlice(ms []models.AccountingPeriod) []domain.AccountingPeriod {
	ds := make([]domain.AccountingPeriod, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccountingPeriod(m)
	}
	return ds
}
