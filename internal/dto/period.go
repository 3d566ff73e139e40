package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to create an accounting period.
// EndDate is exclusive and must be after StartDate.
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID      string              `json:"periodID"`
	Name          string              `json:"name"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Status        domain.PeriodStatus `json:"status"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
	ClosedBy      *string             `json:"closedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy string              `json:"lastUpdatedBy"`
}

// ToPeriodResponse converts a domain.AccountingPeriod to PeriodResponse DTO
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:      p.PeriodID,
		Name:          p.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Status:        p.Status,
		ClosedAt:      p.ClosedAt,
		ClosedBy:      p.ClosedBy,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// ToListPeriodResponse converts a slice of domain.AccountingPeriod to a slice of PeriodResponse DTOs
func ToListPeriodResponse(periods []domain.AccountingPeriod) []PeriodResponse {
	res := make([]PeriodResponse, len(periods))
	for i := range periods {
		res[i] = ToPeriodResponse(&periods[i])
	}
	return res
}

// ListPeriodsResponse wraps the list of periods.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}
