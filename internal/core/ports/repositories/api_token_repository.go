package repositories

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// APITokenRepository defines the interface for API token data access operations
type APITokenRepository interface {
	// Create persists a new API token. Only the hash is written.
	Create(ctx context.Context, token *domain.APIToken) error

	// FindByID retrieves an API token by its ID
	FindByID(ctx context.Context, id string) (*domain.APIToken, error)

	// FindByUserID retrieves a user's tokens, newest first.
	FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error)

	// FindByTokenHash looks up a token by the hash of its raw string.
	// The auth middleware path.
	FindByTokenHash(ctx context.Context, tokenHash string) (*domain.APIToken, error)

	// Update rewrites a token row, typically to bump last_used_at.
	Update(ctx context.Context, token *domain.APIToken) error

	// Delete soft deletes a token by ID.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID soft deletes every token a user owns.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired soft deletes tokens whose expiry is before the cutoff
	// and returns how many rows went. Run by the purge job.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
