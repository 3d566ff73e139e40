package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelAnomalyResult converts a domain AnomalyResult to its model
func ToModelAnomalyResult(d domain.AnomalyResult) models.AnomalyResult {
	return models.AnomalyResult{
		ResultID:    d.ResultID,
		EntryID:     d.EntryID,
		AnomalyType: string(d.AnomalyType),
		Score:       d.Score,
		Detail:      d.Detail,
		DetectedAt:  d.DetectedAt,
	}
}

// ToDomainAnomalyResult converts a model AnomalyResult to its domain form
func ToDomainAnomalyResult(m models.AnomalyResult) domain.AnomalyResult {
	return domain.AnomalyResult{
		ResultID:    m.ResultID,
		EntryID:     m.EntryID,
		AnomalyType: domain.AnomalyType(m.AnomalyType),
		Score:       m.Score,
		Detail:      m.Detail,
		DetectedAt:  m.DetectedAt,
	}
}

// ToDomainAnomalyResultSlice converts model results to domain results
func ToDomainAnomalyResultSlice(ms []models.AnomalyResult) []domain.AnomalyResult {
	ds := make([]domain.AnomalyResult, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAnomalyResult(m)
	}
	return ds
}
