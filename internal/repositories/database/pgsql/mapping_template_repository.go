package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	"github.com/lendaro/loanledger/internal/models"
	"github.com/lendaro/loanledger/internal/utils/mapping"
)

type PgxTemplateRepository struct {
	BaseRepository
}

// newPgxTemplateRepository creates a new repository for mapping template data.
func newPgxTemplateRepository(pool *pgxpool.Pool) portsrepo.TemplateRepositoryWithTx {
	return &PgxTemplateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTemplateRepository implements portsrepo.TemplateRepositoryWithTx
var _ portsrepo.TemplateRepositoryWithTx = (*PgxTemplateRepository)(nil)

const selectTemplateFields = `
	template_id, name, event_type, priority, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTemplate(row pgx.Row) (models.MappingTemplate, error) {
	var m models.MappingTemplate
	err := row.Scan(
		&m.TemplateID,
		&m.Name,
		&m.EventType,
		&m.Priority,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTemplate persists a template with its conditions and lines in one transaction.
func (r *PgxTemplateRepository) SaveTemplate(ctx context.Context, template domain.MappingTemplate) error {
	m := mapping.ToModelMappingTemplate(template)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	insertQuery := `
		INSERT INTO mapping_templates (` + selectTemplateFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.TemplateID,
		m.Name,
		m.EventType,
		m.Priority,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: template %s already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to insert template %s: %w", m.TemplateID, err)
	}

	if err := insertTemplateChildrenInTx(ctx, tx, template); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// insertTemplateChildrenInTx batch inserts the ordered condition and line
// rows of a template. Position preserves the author's ordering.
func insertTemplateChildrenInTx(ctx context.Context, tx pgx.Tx, template domain.MappingTemplate) error {
	batch := &pgx.Batch{}

	conditionQuery := `
		INSERT INTO template_conditions (template_id, position, field, operator, value, match_values)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i, c := range template.Conditions {
		value := sql.NullString{String: c.Value, Valid: c.Value != ""}
		batch.Queue(conditionQuery, template.TemplateID, i, c.Field, string(c.Operator), value, c.Values)
	}

	lineQuery := `
		INSERT INTO template_lines (template_id, position, account_selector, side, amount_expr, memo)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i, l := range template.Lines {
		batch.Queue(lineQuery, template.TemplateID, i, l.AccountSelector, string(l.Side), l.AmountExpr, l.Memo)
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert template child rows for %s: %w", template.TemplateID, err)
		}
	}
	return nil
}

// UpdateTemplate replaces a template's fields, conditions and lines in one transaction.
func (r *PgxTemplateRepository) UpdateTemplate(ctx context.Context, template domain.MappingTemplate) error {
	m := mapping.ToModelMappingTemplate(template)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	updateQuery := `
		UPDATE mapping_templates
		SET name = $2, event_type = $3, priority = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE template_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		m.TemplateID,
		m.Name,
		m.EventType,
		m.Priority,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update template %s: %w", m.TemplateID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM template_conditions WHERE template_id = $1;`, m.TemplateID); err != nil {
		return fmt.Errorf("failed to clear conditions of template %s: %w", m.TemplateID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM template_lines WHERE template_id = $1;`, m.TemplateID); err != nil {
		return fmt.Errorf("failed to clear lines of template %s: %w", m.TemplateID, err)
	}
	if err := insertTemplateChildrenInTx(ctx, tx, template); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeactivateTemplate marks a template inactive.
func (r *PgxTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, userID string) error {
	query := `
		UPDATE mapping_templates
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE template_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, templateID, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate template %s: %w", templateID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTemplateByID retrieves a template with its conditions and lines.
func (r *PgxTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.MappingTemplate, error) {
	query := `
		SELECT ` + selectTemplateFields + `
		FROM mapping_templates
		WHERE template_id = $1;
	`
	m, err := scanTemplate(r.Pool.QueryRow(ctx, query, templateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find template by ID %s: %w", templateID, err)
	}

	conditions, lines, err := r.findTemplateChildren(ctx, []string{templateID})
	if err != nil {
		return nil, err
	}

	template := mapping.ToDomainMappingTemplate(m, conditions[templateID], lines[templateID])
	return &template, nil
}

// FindActiveTemplatesByEventType retrieves active templates for an event type
// in evaluation order: priority ascending, then created_at ascending.
func (r *PgxTemplateRepository) FindActiveTemplatesByEventType(ctx context.Context, eventType domain.LoanEventType) ([]domain.MappingTemplate, error) {
	query := `
		SELECT ` + selectTemplateFields + `
		FROM mapping_templates
		WHERE event_type = $1 AND is_active = TRUE
		ORDER BY priority, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("failed to query templates for event type %s: %w", eventType, err)
	}
	return r.collectTemplates(ctx, rows)
}

// ListTemplates retrieves all templates ordered by event type and priority.
func (r *PgxTemplateRepository) ListTemplates(ctx context.Context) ([]domain.MappingTemplate, error) {
	query := `
		SELECT ` + selectTemplateFields + `
		FROM mapping_templates
		ORDER BY event_type, priority, created_at;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	return r.collectTemplates(ctx, rows)
}

// collectTemplates drains header rows, then loads all child rows in two
// batched queries instead of two per template.
func (r *PgxTemplateRepository) collectTemplates(ctx context.Context, rows pgx.Rows) ([]domain.MappingTemplate, error) {
	defer rows.Close()

	headers := []models.MappingTemplate{}
	for rows.Next() {
		m, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		headers = append(headers, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", rows.Err())
	}
	if len(headers) == 0 {
		return []domain.MappingTemplate{}, nil
	}

	templateIDs := make([]string, len(headers))
	for i := range headers {
		templateIDs[i] = headers[i].TemplateID
	}
	conditions, lines, err := r.findTemplateChildren(ctx, templateIDs)
	if err != nil {
		return nil, err
	}

	templates := make([]domain.MappingTemplate, len(headers))
	for i := range headers {
		templates[i] = mapping.ToDomainMappingTemplate(headers[i], conditions[headers[i].TemplateID], lines[headers[i].TemplateID])
	}
	return templates, nil
}

// findTemplateChildren loads condition and line rows for the given templates,
// grouped by template ID and ordered by position.
func (r *PgxTemplateRepository) findTemplateChildren(ctx context.Context, templateIDs []string) (map[string][]models.TemplateCondition, map[string][]models.TemplateLine, error) {
	conditionQuery := `
		SELECT template_id, position, field, operator, value, match_values
		FROM template_conditions
		WHERE template_id = ANY($1)
		ORDER BY template_id, position;
	`
	condRows, err := r.Pool.Query(ctx, conditionQuery, templateIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query template conditions: %w", err)
	}
	defer condRows.Close()

	conditions := make(map[string][]models.TemplateCondition, len(templateIDs))
	for condRows.Next() {
		var c models.TemplateCondition
		if err := condRows.Scan(&c.TemplateID, &c.Position, &c.Field, &c.Operator, &c.Value, &c.Values); err != nil {
			return nil, nil, fmt.Errorf("failed to scan template condition row: %w", err)
		}
		conditions[c.TemplateID] = append(conditions[c.TemplateID], c)
	}
	if condRows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating template condition rows: %w", condRows.Err())
	}

	lineQuery := `
		SELECT template_id, position, account_selector, side, amount_expr, memo
		FROM template_lines
		WHERE template_id = ANY($1)
		ORDER BY template_id, position;
	`
	lineRows, err := r.Pool.Query(ctx, lineQuery, templateIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query template lines: %w", err)
	}
	defer lineRows.Close()

	lines := make(map[string][]models.TemplateLine, len(templateIDs))
	for lineRows.Next() {
		var l models.TemplateLine
		if err := lineRows.Scan(&l.TemplateID, &l.Position, &l.AccountSelector, &l.Side, &l.AmountExpr, &l.Memo); err != nil {
			return nil, nil, fmt.Errorf("failed to scan template line row: %w", err)
		}
		lines[l.TemplateID] = append(lines[l.TemplateID], l)
	}
	if lineRows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating template line rows: %w", lineRows.Err())
	}

	return conditions, lines, nil
}
