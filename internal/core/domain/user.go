package domain

import "time"

// Authentication providers for User.AuthProvider.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// SystemUserID is recorded as the acting user on entries created by
// background jobs and the seeder.
const SystemUserID = "system"

// User represents a back-office user of the ledger in the domain.
type User struct {
	UserID       string `json:"userID"` // Primary Key (e.g., UUID)
	Name         string `json:"name"`
	Email        string `json:"email"`        // Unique login identifier
	PasswordHash string `json:"-"`            // Empty for OAuth-only users
	AuthProvider string `json:"authProvider"` // "local" or "google"
	ProviderID   string `json:"-"`            // OAuth subject claim, empty for local users
	AuditFields
	RefreshTokenHash       string     `json:"-"` // Hash of the active refresh token
	RefreshTokenExpiryTime *time.Time `json:"-"`
	DeletedAt              *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// GoogleUserInfo mirrors the userinfo payload returned by Google's OAuth API.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}
