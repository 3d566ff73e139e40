package models

import (
	"database/sql"
	"time"
)

// User represents a back-office user row, including credential and refresh
// token columns.
type User struct {
	UserID       string         `db:"user_id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"` // NULL for OAuth-only users
	AuthProvider string         `db:"auth_provider"` // "local" or "google"
	ProviderID   sql.NullString `db:"provider_id"`   // OAuth subject claim
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`

	// Refresh token, stored hashed with its expiry.
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"`
}
