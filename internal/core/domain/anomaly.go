package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnomalyType enumerates the patterns the detector looks for.
type AnomalyType string

const (
	AnomalyAmountOutlier AnomalyType = "AMOUNT_OUTLIER" // Amount far outside the account's trailing history
	AnomalyRoundAmount   AnomalyType = "ROUND_AMOUNT"   // Suspiciously round figure on a large entry
	AnomalyOffHours      AnomalyType = "OFF_HOURS"      // Posted outside business hours
	AnomalyRapidVoid     AnomalyType = "RAPID_VOID"     // Voided shortly after posting
)

// AmountSample is one historical posted line amount for an account, used by
// the outlier heuristic.
type AmountSample struct {
	Amount    decimal.Decimal `json:"amount"`
	EntryDate time.Time       `json:"entryDate"`
}

// AnomalyResult is a read-only annotation on a posted entry. Detection never
// alters the entry itself.
type AnomalyResult struct {
	ResultID    string            `json:"resultID"` // Primary Key (e.g., UUID)
	EntryID     string            `json:"entryID"`  // FK -> JournalEntry.entryID (Not Null)
	AnomalyType AnomalyType       `json:"anomalyType"`
	Score       decimal.Decimal   `json:"score"`            // 0..1, higher is more suspicious
	Detail      map[string]string `json:"detail,omitempty"` // Heuristic-specific evidence
	DetectedAt  time.Time         `json:"detectedAt"`
}
