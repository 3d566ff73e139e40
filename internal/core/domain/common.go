package domain

import "time"

// AuditFields is embedded by every persisted aggregate. CreatedBy and
// LastUpdatedBy hold user IDs; batch writers such as the accrual job stamp
// them with SystemUserID.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
