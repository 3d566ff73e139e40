package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	m := models.User{
		UserID:                 d.UserID,
		Name:                   d.Name,
		Email:                  d.Email,
		AuthProvider:           d.AuthProvider,
		AuditFields:            ToModelAuditFields(d.AuditFields),
		DeletedAt:              d.DeletedAt,
		RefreshTokenExpiryTime: NullTimeFromPtr(d.RefreshTokenExpiryTime),
	}
	if d.PasswordHash != "" {
		m.PasswordHash.String = d.PasswordHash
		m.PasswordHash.Valid = true
	}
	if d.ProviderID != "" {
		m.ProviderID.String = d.ProviderID
		m.ProviderID.Valid = true
	}
	if d.RefreshTokenHash != "" {
		m.RefreshTokenHash.String = d.RefreshTokenHash
		m.RefreshTokenHash.Valid = true
	}
	return m
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:                 m.UserID,
		Name:                   m.Name,
		Email:                  m.Email,
		PasswordHash:           m.PasswordHash.String,
		AuthProvider:           m.AuthProvider,
		ProviderID:             m.ProviderID.String,
		AuditFields:            ToDomainAuditFields(m.AuditFields),
		RefreshTokenHash:       m.RefreshTokenHash.String,
		RefreshTokenExpiryTime: PtrFromNullTime(m.RefreshTokenExpiryTime),
		DeletedAt:              m.DeletedAt,
	}
}

// ToDomainUserSlice converts a slice of model Users to domain Users
func ToDomainUserSlice(ms []models.User) []domain.User {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUser(m)
	}
	return ds
}

// ToModelAPIToken converts a domain APIToken to a model APIToken
func ToModelAPIToken(d domain.APIToken) models.APIToken {
	return models.APIToken{
		ID:         d.ID,
		UserID:     d.UserID,
		Name:       d.Name,
		TokenHash:  d.TokenHash,
		LastUsedAt: d.LastUsedAt,
		ExpiresAt:  d.ExpiresAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		DeletedAt:  d.DeletedAt,
	}
}

// ToDomainAPIToken converts a model APIToken to a domain APIToken
func ToDomainAPIToken(m models.APIToken) domain.APIToken {
	return domain.APIToken{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		TokenHash:  m.TokenHash,
		LastUsedAt: m.LastUsedAt,
		ExpiresAt:  m.ExpiresAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		DeletedAt:  m.DeletedAt,
	}
}

// ToDomainAPITokenSlice converts a slice of model APITokens to domain APITokens
func ToDomainAPITokenSlice(ms []models.APIToken) []domain.APIToken {
	ds := make([]domain.APIToken, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAPIToken(m)
	}
	return ds
}
