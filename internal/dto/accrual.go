package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// RunAccrualRequest defines the date range for an interest accrual run.
// EndDate is exclusive; the run covers each day in [StartDate, EndDate).
type RunAccrualRequest struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
}

// AccrualBatchResponse defines the data returned for an accrual batch.
type AccrualBatchResponse struct {
	BatchID       string                    `json:"batchID"`
	StartDate     time.Time                 `json:"startDate"`
	EndDate       time.Time                 `json:"endDate"`
	Status        domain.AccrualBatchStatus `json:"status"`
	RunAt         time.Time                 `json:"runAt"`
	RunBy         string                    `json:"runBy"`
	FailureDetail *string                   `json:"failureDetail,omitempty"`
	EntryCount    int                       `json:"entryCount"`
}

// ToAccrualBatchResponse converts a domain.AccrualBatch to AccrualBatchResponse DTO
func ToAccrualBatchResponse(b *domain.AccrualBatch) AccrualBatchResponse {
	return AccrualBatchResponse{
		BatchID:       b.BatchID,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		Status:        b.Status,
		RunAt:         b.RunAt,
		RunBy:         b.RunBy,
		FailureDetail: b.FailureDetail,
		EntryCount:    b.EntryCount,
	}
}

// ToListAccrualBatchResponse converts a slice of domain.AccrualBatch to response DTOs
func ToListAccrualBatchResponse(batches []domain.AccrualBatch) []AccrualBatchResponse {
	res := make([]AccrualBatchResponse, len(batches))
	for i := range batches {
		res[i] = ToAccrualBatchResponse(&batches[i])
	}
	return res
}

// ListAccrualBatchesParams defines query parameters for listing batches.
type ListAccrualBatchesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccrualBatchesResponse wraps the list of batches.
type ListAccrualBatchesResponse struct {
	Batches []AccrualBatchResponse `json:"batches"`
}
