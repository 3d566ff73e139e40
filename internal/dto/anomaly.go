package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AnomalyResultResponse defines the data returned for one anomaly result.
type AnomalyResultResponse struct {
	ResultID    string             `json:"resultID"`
	EntryID     string             `json:"entryID"`
	AnomalyType domain.AnomalyType `json:"anomalyType"`
	Score       decimal.Decimal    `json:"score"`
	Detail      map[string]string  `json:"detail,omitempty"`
	DetectedAt  time.Time          `json:"detectedAt"`
}

// ToAnomalyResultResponse converts a domain.AnomalyResult to AnomalyResultResponse DTO
func ToAnomalyResultResponse(r *domain.AnomalyResult) AnomalyResultResponse {
	return AnomalyResultResponse{
		ResultID:    r.ResultID,
		EntryID:     r.EntryID,
		AnomalyType: r.AnomalyType,
		Score:       r.Score,
		Detail:      r.Detail,
		DetectedAt:  r.DetectedAt,
	}
}

// ToListAnomalyResultResponse converts a slice of domain.AnomalyResult to response DTOs
func ToListAnomalyResultResponse(results []domain.AnomalyResult) []AnomalyResultResponse {
	res := make([]AnomalyResultResponse, len(results))
	for i := range results {
		res[i] = ToAnomalyResultResponse(&results[i])
	}
	return res
}

// ListAnomalyResultsParams defines query parameters for listing anomaly results.
type ListAnomalyResultsParams struct {
	Type   *string `form:"type"`
	Limit  int     `form:"limit,default=20"`
	Offset int     `form:"offset,default=0"`
}

// ListAnomalyResultsResponse wraps the list of anomaly results.
type ListAnomalyResultsResponse struct {
	Results []AnomalyResultResponse `json:"results"`
}

// ScanResponse reports the outcome of one detector pass.
type ScanResponse struct {
	Scanned int `json:"scanned"`
	Flagged int `json:"flagged"`
}
