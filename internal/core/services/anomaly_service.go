package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/middleware"
)

const (
	// scanBatchSize caps how many entries one Scan call examines.
	scanBatchSize = 100

	// outlierHistoryLimit is how many trailing posted amounts per account
	// feed the z-score.
	outlierHistoryLimit = 50
	// outlierMinHistory is the minimum sample count before the outlier
	// heuristic fires at all.
	outlierMinHistory = 12
	// outlierZThreshold is the z-score above which an amount is flagged.
	outlierZThreshold = 3.0

	// roundAmountFloor is the smallest amount the round-amount heuristic
	// looks at.
	roundAmountFloor = 10000

	// businessHoursStart and businessHoursEnd bound the normal posting
	// window in UTC hours.
	businessHoursStart = 6
	businessHoursEnd   = 22

	// rapidVoidWindow is the posting-to-void interval considered suspicious.
	rapidVoidWindow = time.Hour
)

// anomalyService scores POSTED entries with read-only heuristics. Results
// annotate entries; nothing here ever writes to the journal.
type anomalyService struct {
	BaseService
	anomalyRepo portsrepo.AnomalyRepositoryWithTx
	entrySvc    portssvc.EntryReaderSvc
}

// NewAnomalyService creates a new AnomalyService.
func NewAnomalyService(anomalyRepo portsrepo.AnomalyRepositoryWithTx, entrySvc portssvc.EntryReaderSvc) portssvc.AnomalySvcFacade {
	return &anomalyService{
		anomalyRepo: anomalyRepo,
		entrySvc:    entrySvc,
	}
}

var _ portssvc.AnomalySvcFacade = (*anomalyService)(nil)

// Scan examines POSTED entries no scan has seen yet and persists any
// findings. Entries examined without findings are still marked scanned so
// they are not revisited.
func (s *anomalyService) Scan(ctx context.Context) (int, int, error) {
	logger := s.GetLogger(ctx)

	entryIDs, err := s.anomalyRepo.FindUnscoredEntryIDs(ctx, scanBatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to find unscored entries: %w", err)
	}
	if len(entryIDs) == 0 {
		return 0, 0, nil
	}

	var results []domain.AnomalyResult
	for _, entryID := range entryIDs {
		entry, err := s.entrySvc.GetEntryByID(ctx, entryID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to load entry %s for scan: %w", entryID, err)
		}
		findings, err := s.scoreEntry(ctx, entry)
		if err != nil {
			return 0, 0, err
		}
		results = append(results, findings...)
	}

	if err := s.anomalyRepo.SaveResults(ctx, entryIDs, results); err != nil {
		return 0, 0, fmt.Errorf("failed to save scan results: %w", err)
	}

	for i := range results {
		middleware.AnomaliesFlaggedTotal.WithLabelValues(string(results[i].AnomalyType)).Inc()
	}
	logger.Info("Anomaly scan finished",
		slog.Int("scanned", len(entryIDs)),
		slog.Int("flagged", len(results)))
	return len(entryIDs), len(results), nil
}

// scoreEntry applies every heuristic to one entry.
func (s *anomalyService) scoreEntry(ctx context.Context, entry *domain.JournalEntry) ([]domain.AnomalyResult, error) {
	var results []domain.AnomalyResult

	outliers, err := s.scoreAmountOutliers(ctx, entry)
	if err != nil {
		return nil, err
	}
	results = append(results, outliers...)

	if r := scoreRoundAmount(entry); r != nil {
		results = append(results, *r)
	}
	if r := scoreOffHours(entry); r != nil {
		results = append(results, *r)
	}
	rapid, err := s.scoreRapidVoid(ctx, entry)
	if err != nil {
		return nil, err
	}
	if rapid != nil {
		results = append(results, *rapid)
	}
	return results, nil
}

// scoreAmountOutliers compares each line amount against the account's
// trailing posted history. The z-score runs in floating point; it feeds a
// 0..1 suspicion score, never a ledger amount.
func (s *anomalyService) scoreAmountOutliers(ctx context.Context, entry *domain.JournalEntry) ([]domain.AnomalyResult, error) {
	var results []domain.AnomalyResult
	seen := make(map[string]bool, len(entry.Lines))

	for i := range entry.Lines {
		line := &entry.Lines[i]
		if seen[line.AccountID] {
			continue
		}
		seen[line.AccountID] = true

		history, err := s.anomalyRepo.AccountAmountHistory(ctx, line.AccountID, outlierHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load amount history for account %s: %w", line.AccountID, err)
		}
		if len(history) < outlierMinHistory {
			continue
		}

		mean, stddev := amountStats(history)
		if stddev == 0 {
			continue
		}
		amount, _ := line.Amount().Float64()
		z := math.Abs(amount-mean) / stddev
		if z < outlierZThreshold {
			continue
		}

		score := math.Min(1, z/(2*outlierZThreshold))
		results = append(results, domain.AnomalyResult{
			ResultID:    uuid.NewString(),
			EntryID:     entry.EntryID,
			AnomalyType: domain.AnomalyAmountOutlier,
			Score:       decimal.NewFromFloat(score).Round(4),
			Detail: map[string]string{
				"account_id": line.AccountID,
				"amount":     line.Amount().String(),
				"z_score":    fmt.Sprintf("%.2f", z),
				"samples":    fmt.Sprintf("%d", len(history)),
			},
			DetectedAt: time.Now().UTC(),
		})
	}
	return results, nil
}

func amountStats(samples []domain.AmountSample) (mean, stddev float64) {
	n := float64(len(samples))
	var sum float64
	for i := range samples {
		v, _ := samples[i].Amount.Float64()
		sum += v
	}
	mean = sum / n
	var sq float64
	for i := range samples {
		v, _ := samples[i].Amount.Float64()
		sq += (v - mean) * (v - mean)
	}
	stddev = math.Sqrt(sq / n)
	return mean, stddev
}

// scoreRoundAmount flags large entries whose total is a suspiciously round
// figure.
func scoreRoundAmount(entry *domain.JournalEntry) *domain.AnomalyResult {
	var totalDebit decimal.Decimal
	for i := range entry.Lines {
		totalDebit = totalDebit.Add(entry.Lines[i].Debit)
	}
	if totalDebit.LessThan(decimal.NewFromInt(roundAmountFloor)) {
		return nil
	}

	score := decimal.Zero
	switch {
	case totalDebit.Mod(decimal.NewFromInt(10000)).IsZero():
		score = decimal.NewFromFloat(0.7)
	case totalDebit.Mod(decimal.NewFromInt(1000)).IsZero():
		score = decimal.NewFromFloat(0.5)
	default:
		return nil
	}

	return &domain.AnomalyResult{
		ResultID:    uuid.NewString(),
		EntryID:     entry.EntryID,
		AnomalyType: domain.AnomalyRoundAmount,
		Score:       score,
		Detail: map[string]string{
			"total": totalDebit.String(),
		},
		DetectedAt: time.Now().UTC(),
	}
}

// scoreOffHours flags entries posted outside business hours or on weekends.
func scoreOffHours(entry *domain.JournalEntry) *domain.AnomalyResult {
	if entry.PostedAt == nil {
		return nil
	}
	postedAt := entry.PostedAt.UTC()

	weekend := postedAt.Weekday() == time.Saturday || postedAt.Weekday() == time.Sunday
	offHours := postedAt.Hour() < businessHoursStart || postedAt.Hour() >= businessHoursEnd
	if !weekend && !offHours {
		return nil
	}

	score := decimal.NewFromFloat(0.4)
	if weekend {
		score = decimal.NewFromFloat(0.6)
	}
	return &domain.AnomalyResult{
		ResultID:    uuid.NewString(),
		EntryID:     entry.EntryID,
		AnomalyType: domain.AnomalyOffHours,
		Score:       score,
		Detail: map[string]string{
			"posted_at": postedAt.Format(time.RFC3339),
			"weekday":   postedAt.Weekday().String(),
		},
		DetectedAt: time.Now().UTC(),
	}
}

// scoreRapidVoid fires when scanning a voiding entry whose original was
// posted less than rapidVoidWindow before the void.
func (s *anomalyService) scoreRapidVoid(ctx context.Context, entry *domain.JournalEntry) (*domain.AnomalyResult, error) {
	if entry.VoidedEntryID == nil || entry.PostedAt == nil {
		return nil, nil
	}

	original, err := s.entrySvc.GetEntryByID(ctx, *entry.VoidedEntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voided entry %s: %w", *entry.VoidedEntryID, err)
	}
	if original.PostedAt == nil {
		return nil, nil
	}

	gap := entry.PostedAt.Sub(*original.PostedAt)
	if gap < 0 || gap >= rapidVoidWindow {
		return nil, nil
	}

	return &domain.AnomalyResult{
		ResultID:    uuid.NewString(),
		EntryID:     entry.EntryID,
		AnomalyType: domain.AnomalyRapidVoid,
		Score:       decimal.NewFromFloat(0.8),
		Detail: map[string]string{
			"voided_entry_id": original.EntryID,
			"gap":             gap.Round(time.Second).String(),
		},
		DetectedAt: time.Now().UTC(),
	}, nil
}

// ListResults retrieves a paginated list of results, newest first.
func (s *anomalyService) ListResults(ctx context.Context, anomalyType *domain.AnomalyType, limit, offset int) ([]domain.AnomalyResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	results, err := s.anomalyRepo.ListResults(ctx, anomalyType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list anomaly results: %w", err)
	}
	return results, nil
}

// GetResultsForEntry retrieves anomaly results for one entry.
func (s *anomalyService) GetResultsForEntry(ctx context.Context, entryID string) ([]domain.AnomalyResult, error) {
	results, err := s.anomalyRepo.FindResultsByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for entry %s: %w", entryID, err)
	}
	return results, nil
}
