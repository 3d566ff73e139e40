package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/middleware"
)

// Job names as they appear in logs and metrics.
const (
	JobAccrualDaily  = "accrual-daily"
	JobAnomalyScan   = "anomaly-scan"
	JobAPITokenPurge = "api-token-purge"
)

// AccrualDailyJob accrues interest for yesterday's range. A range that has
// already been covered, for example after a restart or a manual run, is not
// an error.
func AccrualDailyJob(accrualSvc portssvc.AccrualSvcFacade) JobFunc {
	return func(ctx context.Context) error {
		logger := middleware.GetLoggerFromCtx(ctx)

		today := time.Now().UTC().Truncate(24 * time.Hour)
		start := today.AddDate(0, 0, -1)

		batch, err := accrualSvc.Run(ctx, start, today, domain.SystemUserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicateBatch) {
				logger.Info("Accrual range already covered",
					slog.Time("start", start), slog.Time("end", today))
				return nil
			}
			return fmt.Errorf("accrual run failed: %w", err)
		}

		logger.Info("Accrual batch finished",
			slog.String("batch_id", batch.BatchID),
			slog.String("status", string(batch.Status)),
			slog.Int("entry_count", batch.EntryCount),
		)
		return nil
	}
}

// AnomalyScanJob scores POSTED entries that have not been scanned yet.
func AnomalyScanJob(anomalySvc portssvc.AnomalySvcFacade) JobFunc {
	return func(ctx context.Context) error {
		logger := middleware.GetLoggerFromCtx(ctx)

		scanned, flagged, err := anomalySvc.Scan(ctx)
		if err != nil {
			return fmt.Errorf("anomaly scan failed: %w", err)
		}

		logger.Info("Anomaly scan finished",
			slog.Int("scanned", scanned), slog.Int("flagged", flagged))
		return nil
	}
}

// APITokenPurgeJob removes API tokens whose expiry has passed.
func APITokenPurgeJob(tokenRepo portsrepo.APITokenRepository) JobFunc {
	return func(ctx context.Context) error {
		logger := middleware.GetLoggerFromCtx(ctx)

		purged, err := tokenRepo.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("token purge failed: %w", err)
		}

		if purged > 0 {
			logger.Info("Expired API tokens purged", slog.Int64("count", purged))
		}
		return nil
	}
}
