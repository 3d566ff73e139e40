package services

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/dto"
)

// MappingResolverSvc translates loan lifecycle events into journal line drafts
type MappingResolverSvc interface {
	// Resolve evaluates active templates for the event's type in priority
	// order and renders the first full match into line drafts. Fails with the
	// no-matching-template error when nothing matches; callers must treat
	// that as a hard stop, never as permission to skip posting.
	Resolve(ctx context.Context, event domain.LoanEvent) ([]domain.JournalLine, *domain.MappingTemplate, error)
}

// TemplateReaderSvc defines read operations for mapping templates
type TemplateReaderSvc interface {
	// GetTemplateByID retrieves a template with conditions and lines.
	GetTemplateByID(ctx context.Context, templateID string) (*domain.MappingTemplate, error)

	// ListTemplates retrieves all templates.
	ListTemplates(ctx context.Context) ([]domain.MappingTemplate, error)
}

// TemplateWriterSvc defines write operations for mapping templates
type TemplateWriterSvc interface {
	// CreateTemplate persists a new template after validating conditions and
	// line expressions.
	CreateTemplate(ctx context.Context, req dto.CreateMappingTemplateRequest, creatorUserID string) (*domain.MappingTemplate, error)

	// DeactivateTemplate marks a template inactive.
	DeactivateTemplate(ctx context.Context, templateID string, userID string) error
}

// MappingSvcFacade combines all mapping-related service interfaces
type MappingSvcFacade interface {
	MappingResolverSvc
	TemplateReaderSvc
	TemplateWriterSvc
}
