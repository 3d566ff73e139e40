package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest defines the data needed to register a loan.
// The loan starts PENDING; money only moves once it is disbursed.
type CreateLoanRequest struct {
	ReferenceCode string          `json:"referenceCode" binding:"required"`
	BorrowerName  string          `json:"borrowerName" binding:"required"`
	Principal     decimal.Decimal `json:"principal" binding:"required"`
	AnnualRate    decimal.Decimal `json:"annualRate" binding:"required"`
	DayCountBasis int             `json:"dayCountBasis" binding:"required,oneof=360 365"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,len=3,uppercase"`
}

// LoanPaymentRequest defines the data for recording a repayment.
type LoanPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	// PaidAt defaults to now when omitted.
	PaidAt *time.Time `json:"paidAt"`
}

// LoanFeeRequest defines the data for charging a fee against a loan.
type LoanFeeRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	FeeKind string          `json:"feeKind" binding:"required"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID               string            `json:"loanID"`
	ReferenceCode        string            `json:"referenceCode"`
	BorrowerName         string            `json:"borrowerName"`
	Principal            decimal.Decimal   `json:"principal"`
	OutstandingPrincipal decimal.Decimal   `json:"outstandingPrincipal"`
	AnnualRate           decimal.Decimal   `json:"annualRate"`
	DayCountBasis        int               `json:"dayCountBasis"`
	CurrencyCode         string            `json:"currencyCode"`
	Status               domain.LoanStatus `json:"status"`
	DisbursedAt          *time.Time        `json:"disbursedAt,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	CreatedBy            string            `json:"createdBy"`
	LastUpdatedAt        time.Time         `json:"lastUpdatedAt"`
	LastUpdatedBy        string            `json:"lastUpdatedBy"`
}

// ToLoanResponse converts a domain.Loan to LoanResponse DTO
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:               l.LoanID,
		ReferenceCode:        l.ReferenceCode,
		BorrowerName:         l.BorrowerName,
		Principal:            l.Principal,
		OutstandingPrincipal: l.OutstandingPrincipal,
		AnnualRate:           l.AnnualRate,
		DayCountBasis:        l.DayCountBasis,
		CurrencyCode:         l.CurrencyCode,
		Status:               l.Status,
		DisbursedAt:          l.DisbursedAt,
		CreatedAt:            l.CreatedAt,
		CreatedBy:            l.CreatedBy,
		LastUpdatedAt:        l.LastUpdatedAt,
		LastUpdatedBy:        l.LastUpdatedBy,
	}
}

// ToListLoanResponse converts a slice of domain.Loan to a slice of LoanResponse DTOs
func ToListLoanResponse(loans []domain.Loan) []LoanResponse {
	res := make([]LoanResponse, len(loans))
	for i := range loans {
		res[i] = ToLoanResponse(&loans[i])
	}
	return res
}

// ListLoansParams defines query parameters for listing loans.
type ListLoansParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListLoansResponse wraps the list of loans.
type ListLoansResponse struct {
	Loans []LoanResponse `json:"loans"`
}

// LoanEventResponse defines the data returned for a loan lifecycle event.
type LoanEventResponse struct {
	EventID      string               `json:"eventID"`
	LoanID       string               `json:"loanID"`
	EventType    domain.LoanEventType `json:"eventType"`
	Amount       decimal.Decimal      `json:"amount"`
	CurrencyCode string               `json:"currencyCode"`
	OccurredAt   time.Time            `json:"occurredAt"`
	Attributes   map[string]string    `json:"attributes,omitempty"`
	EntryID      *string              `json:"entryID,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	CreatedBy    string               `json:"createdBy"`
}

// ToLoanEventResponse converts a domain.LoanEvent to LoanEventResponse DTO
func ToLoanEventResponse(e *domain.LoanEvent) LoanEventResponse {
	return LoanEventResponse{
		EventID:      e.EventID,
		LoanID:       e.LoanID,
		EventType:    e.EventType,
		Amount:       e.Amount,
		CurrencyCode: e.CurrencyCode,
		OccurredAt:   e.OccurredAt,
		Attributes:   e.Attributes,
		EntryID:      e.EntryID,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
	}
}

// ToListLoanEventResponse converts a slice of domain.LoanEvent to response DTOs
func ToListLoanEventResponse(events []domain.LoanEvent) []LoanEventResponse {
	res := make([]LoanEventResponse, len(events))
	for i := range events {
		res[i] = ToLoanEventResponse(&events[i])
	}
	return res
}

// ListLoanEventsResponse wraps the list of loan events.
type ListLoanEventsResponse struct {
	Events []LoanEventResponse `json:"events"`
}
