package repositories

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// TemplateReader defines read operations for mapping template data
type TemplateReader interface {
	// FindTemplateByID retrieves a template with its conditions and lines.
	FindTemplateByID(ctx context.Context, templateID string) (*domain.MappingTemplate, error)

	// FindActiveTemplatesByEventType retrieves active templates for an event
	// type ordered by priority, then created_at.
	FindActiveTemplatesByEventType(ctx context.Context, eventType domain.LoanEventType) ([]domain.MappingTemplate, error)

	// ListTemplates retrieves all templates ordered by event type and priority.
	ListTemplates(ctx context.Context) ([]domain.MappingTemplate, error)
}

// TemplateWriter defines write operations for mapping template data
type TemplateWriter interface {
	// SaveTemplate persists a template with its conditions and lines atomically.
	SaveTemplate(ctx context.Context, template domain.MappingTemplate) error

	// UpdateTemplate replaces a template's fields, conditions and lines atomically.
	UpdateTemplate(ctx context.Context, template domain.MappingTemplate) error

	// DeactivateTemplate marks a template inactive so Resolve skips it.
	DeactivateTemplate(ctx context.Context, templateID string, userID string) error
}

// TemplateRepositoryFacade combines all template-related repository interfaces
// This is a facade for clients that need access to all operations
type TemplateRepositoryFacade interface {
	TemplateReader
	TemplateWriter
}

// TemplateRepositoryWithTx extends TemplateRepositoryFacade with transaction capabilities
type TemplateRepositoryWithTx interface {
	TemplateRepositoryFacade
	TransactionManager
}
