package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:               d.LoanID,
		ReferenceCode:        d.ReferenceCode,
		BorrowerName:         d.BorrowerName,
		Principal:            d.Principal,
		OutstandingPrincipal: d.OutstandingPrincipal,
		AnnualRate:           d.AnnualRate,
		DayCountBasis:        d.DayCountBasis,
		CurrencyCode:         d.CurrencyCode,
		Status:               models.LoanStatus(d.Status),
		DisbursedAt:          NullTimeFromPtr(d.DisbursedAt),
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:               m.LoanID,
		ReferenceCode:        m.ReferenceCode,
		BorrowerName:         m.BorrowerName,
		Principal:            m.Principal,
		OutstandingPrincipal: m.OutstandingPrincipal,
		AnnualRate:           m.AnnualRate,
		DayCountBasis:        m.DayCountBasis,
		CurrencyCode:         m.CurrencyCode,
		Status:               domain.LoanStatus(m.Status),
		DisbursedAt:          PtrFromNullTime(m.DisbursedAt),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanSlice converts a slice of model Loans to domain Loans
func ToDomainLoanSlice(ms []models.Loan) []domain.Loan {
	ds := make([]domain.Loan, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoan(m)
	}
	return ds
}
