package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	"github.com/lendaro/loanledger/internal/models"
	"github.com/lendaro/loanledger/internal/utils/mapping"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new repository for API token data.
func newPgxAPITokenRepository(pool *pgxpool.Pool) portsrepo.APITokenRepository {
	return &PgxAPITokenRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAPITokenRepository implements portsrepo.APITokenRepository
var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

const (
	apiTokensTable = "api_tokens"

	selectAPITokenFields = `
		id, user_id, name, token_hash,
		last_used_at, expires_at, created_at, updated_at
	`

	insertAPITokenQuery = `
		INSERT INTO ` + apiTokensTable + ` (
			id, user_id, name, token_hash, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + selectAPITokenFields

	findAPITokenByIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE id = $1 AND deleted_at IS NULL
	`

	findAPITokensByUserIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	findAPITokenByHashQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE token_hash = $1 AND deleted_at IS NULL
	`

	updateAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET
			last_used_at = COALESCE($2, last_used_at),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	deleteAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	deleteAPITokensByUserIDQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	deleteExpiredAPITokensQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = NOW()
		WHERE expires_at < $1 AND deleted_at IS NULL
	`
)

func scanAPIToken(row pgx.Row) (models.APIToken, error) {
	var m models.APIToken
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.TokenHash,
		&m.LastUsedAt,
		&m.ExpiresAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// Create persists a new API token. The database stamps created_at and
// updated_at, which are copied back onto the token.
func (r *PgxAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}

	m := mapping.ToModelAPIToken(*token)
	created, err := scanAPIToken(r.Pool.QueryRow(ctx, insertAPITokenQuery,
		m.ID,
		m.UserID,
		m.Name,
		m.TokenHash,
		m.ExpiresAt,
	))
	if err != nil {
		return fmt.Errorf("failed to create API token: %w", err)
	}

	token.CreatedAt = created.CreatedAt
	token.UpdatedAt = created.UpdatedAt
	return nil
}

// FindByID retrieves an API token by its ID.
func (r *PgxAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty")
	}

	m, err := scanAPIToken(r.Pool.QueryRow(ctx, findAPITokenByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find API token %s: %w", id, err)
	}

	token := mapping.ToDomainAPIToken(m)
	return &token, nil
}

// FindByUserID retrieves all API tokens for a specific user.
func (r *PgxAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	rows, err := r.Pool.Query(ctx, findAPITokensByUserIDQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query API tokens: %w", err)
	}
	defer rows.Close()

	modelTokens := []models.APIToken{}
	for rows.Next() {
		m, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API token row: %w", err)
		}
		modelTokens = append(modelTokens, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating API token rows: %w", rows.Err())
	}

	return mapping.ToDomainAPITokenSlice(modelTokens), nil
}

// FindByTokenHash finds a token by its hash.
func (r *PgxAPITokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	if tokenHash == "" {
		return nil, errors.New("token hash cannot be empty")
	}

	m, err := scanAPIToken(r.Pool.QueryRow(ctx, findAPITokenByHashQuery, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find API token by hash: %w", err)
	}

	token := mapping.ToDomainAPIToken(m)
	return &token, nil
}

// Update refreshes a token's last_used_at timestamp.
func (r *PgxAPITokenRepository) Update(ctx context.Context, token *domain.APIToken) error {
	if token == nil {
		return errors.New("token cannot be nil")
	}

	m := mapping.ToModelAPIToken(*token)
	cmdTag, err := r.Pool.Exec(ctx, updateAPITokenQuery, m.ID, m.LastUsedAt)
	if err != nil {
		return fmt.Errorf("failed to update API token %s: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("API token %s not found: %w", m.ID, apperrors.ErrNotFound)
	}

	token.UpdatedAt = time.Now()
	return nil
}

// Delete soft deletes an API token by ID.
func (r *PgxAPITokenRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	cmdTag, err := r.Pool.Exec(ctx, deleteAPITokenQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete API token %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("API token %s not found: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteByUserID soft deletes all API tokens for a specific user. Deleting
// zero tokens is not an error.
func (r *PgxAPITokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user ID cannot be empty")
	}

	if _, err := r.Pool.Exec(ctx, deleteAPITokensByUserIDQuery, userID); err != nil {
		return fmt.Errorf("failed to delete API tokens for user %s: %w", userID, err)
	}
	return nil
}

// DeleteExpired soft deletes all tokens that expired before the given time
// and reports how many were removed.
func (r *PgxAPITokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, errors.New("invalid time provided")
	}

	cmdTag, err := r.Pool.Exec(ctx, deleteExpiredAPITokensQuery, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired API tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
