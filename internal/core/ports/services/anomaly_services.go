package services

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// AnomalySvcFacade defines operations for the read-only anomaly detector
type AnomalySvcFacade interface {
	// Scan examines POSTED entries not yet scored, applies the heuristics,
	// and persists results. Returns how many entries were examined and how
	// many anomalies were flagged. Never mutates journal entries.
	Scan(ctx context.Context) (scanned int, flagged int, err error)

	// ListResults retrieves a paginated list of anomaly results.
	ListResults(ctx context.Context, anomalyType *domain.AnomalyType, limit, offset int) ([]domain.AnomalyResult, error)

	// GetResultsForEntry retrieves anomaly results for one entry.
	GetResultsForEntry(ctx context.Context, entryID string) ([]domain.AnomalyResult, error)
}
