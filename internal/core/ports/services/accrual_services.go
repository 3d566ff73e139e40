package services

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// AccrualSvcFacade defines operations for interest accrual batch processing
type AccrualSvcFacade interface {
	// Run accrues daily interest for every accruing loan over [start, end),
	// posting one entry per loan-day through the posting engine. The range is
	// idempotent: a COMPLETED or RUNNING batch for an overlapping range fails
	// with the duplicate-batch error. Context cancellation between days stops
	// cleanly with the batch marked INCOMPLETE; committed entries stay.
	Run(ctx context.Context, start, end time.Time, userID string) (*domain.AccrualBatch, error)

	// Resume picks up an INCOMPLETE batch, processing only loan-days without
	// a committed entry.
	Resume(ctx context.Context, batchID string, userID string) (*domain.AccrualBatch, error)

	// GetBatchByID retrieves a batch.
	GetBatchByID(ctx context.Context, batchID string) (*domain.AccrualBatch, error)

	// ListBatches retrieves a paginated list of batches.
	ListBatches(ctx context.Context, limit, offset int) ([]domain.AccrualBatch, error)
}
