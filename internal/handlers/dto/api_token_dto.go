package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// CreateAPITokenRequest is the payload for minting an API token. ExpiresIn
// is in seconds; omitting it makes a token that never expires.
type CreateAPITokenRequest struct {
	Name      string `json:"name" binding:"required,min=3,max=100"`
	ExpiresIn *int64 `json:"expiresIn,omitempty"`
}

// APITokenResponse is the API shape of a token. The raw token string is
// deliberately absent, it only ever appears in CreateAPITokenResponse.
type APITokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateAPITokenResponse carries the raw token exactly once, at creation.
// After this response only the hash exists server side.
type CreateAPITokenResponse struct {
	TokenString string           `json:"token"`
	Details     APITokenResponse `json:"details"`
}

// ListAPITokensResponse is the collection shape for a user's tokens.
type ListAPITokensResponse []APITokenResponse

// ToAPITokenResponse maps a domain token onto its API shape.
func ToAPITokenResponse(token domain.APIToken) APITokenResponse {
	return APITokenResponse{
		ID:         token.ID,
		Name:       token.Name,
		LastUsedAt: token.LastUsedAt,
		ExpiresAt:  token.ExpiresAt,
		CreatedAt:  token.CreatedAt,
	}
}

// ToAPITokenResponseList maps domain tokens onto API shapes.
func ToAPITokenResponseList(tokens []domain.APIToken) ListAPITokensResponse {
	result := make(ListAPITokensResponse, len(tokens))
	for i, token := range tokens {
		result[i] = ToAPITokenResponse(token)
	}
	return result
}

// ToCreateAPITokenResponse pairs the raw token string with its stored
// details for the one-time creation response.
func ToCreateAPITokenResponse(tokenStr string, token domain.APIToken) CreateAPITokenResponse {
	return CreateAPITokenResponse{
		TokenString: tokenStr,
		Details:     ToAPITokenResponse(token),
	}
}
