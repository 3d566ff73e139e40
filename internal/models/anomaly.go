package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnomalyResult represents a read-only anomaly annotation row.
type AnomalyResult struct {
	ResultID    string            `db:"result_id"`
	EntryID     string            `db:"entry_id"`
	AnomalyType string            `db:"anomaly_type"`
	Score       decimal.Decimal   `db:"score"`
	Detail      map[string]string `db:"detail"` // JSONB
	DetectedAt  time.Time         `db:"detected_at"`
}
