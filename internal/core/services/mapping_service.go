package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/dto"
)

var (
	ErrNoMatchingTemplate = errors.New("no mapping template matches the event")
	ErrBadAmountExpr      = errors.New("invalid amount expression")
	ErrBadAccountSelector = errors.New("account selector did not resolve")
)

// mappingService translates loan lifecycle events into journal line drafts
// via priority-ordered templates. The first template whose full condition
// list passes wins; an event no template covers is a hard failure, because
// silently skipping a posting would corrupt the ledger.
type mappingService struct {
	BaseService
	templateRepo portsrepo.TemplateRepositoryWithTx
	accountSvc   portssvc.AccountSvcFacade
}

// NewMappingService creates a new MappingService.
func NewMappingService(templateRepo portsrepo.TemplateRepositoryWithTx, accountSvc portssvc.AccountSvcFacade) portssvc.MappingSvcFacade {
	return &mappingService{
		templateRepo: templateRepo,
		accountSvc:   accountSvc,
	}
}

var _ portssvc.MappingSvcFacade = (*mappingService)(nil)

// Resolve evaluates active templates for the event's type in priority order
// and renders the first full match.
func (s *mappingService) Resolve(ctx context.Context, event domain.LoanEvent) ([]domain.JournalLine, *domain.MappingTemplate, error) {
	logger := s.GetLogger(ctx)

	if !event.EventType.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown event type %q", apperrors.ErrValidation, event.EventType)
	}

	templates, err := s.templateRepo.FindActiveTemplatesByEventType(ctx, event.EventType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates for %s: %w", event.EventType, err)
	}

	for i := range templates {
		tmpl := &templates[i]
		if !s.conditionsMatch(tmpl.Conditions, &event) {
			continue
		}
		lines, err := s.renderLines(ctx, tmpl, &event)
		if err != nil {
			// A matching template that cannot render is a configuration
			// error, not a reason to fall through to a lower priority one.
			logger.Error("Template matched but failed to render",
				slog.String("template_id", tmpl.TemplateID),
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()))
			return nil, nil, err
		}
		logger.Debug("Event resolved",
			slog.String("event_id", event.EventID),
			slog.String("template_id", tmpl.TemplateID))
		return lines, tmpl, nil
	}

	return nil, nil, fmt.Errorf("%w: event type %s, event %s", ErrNoMatchingTemplate, event.EventType, event.EventID)
}

// conditionsMatch reports whether every condition on the template passes for
// the event. A condition referencing a field the event lacks fails the
// template rather than erroring.
func (s *mappingService) conditionsMatch(conditions []domain.TemplateCondition, event *domain.LoanEvent) bool {
	for i := range conditions {
		if !evalCondition(&conditions[i], event) {
			return false
		}
	}
	return true
}

// evalCondition applies one comparison. Ordering operators compare
// numerically and fail when either side is not a decimal; equality operators
// compare numerically when both sides parse and fall back to exact string
// comparison otherwise.
func evalCondition(cond *domain.TemplateCondition, event *domain.LoanEvent) bool {
	fieldVal, ok := event.Field(cond.Field)
	if !ok {
		return false
	}

	switch cond.Operator {
	case domain.OpIn:
		for _, v := range cond.Values {
			if fieldVal == v {
				return true
			}
		}
		return false
	case domain.OpEqual, domain.OpNotEqual:
		equal := fieldVal == cond.Value
		if fd, err1 := decimal.NewFromString(fieldVal); err1 == nil {
			if od, err2 := decimal.NewFromString(cond.Value); err2 == nil {
				equal = fd.Equal(od)
			}
		}
		if cond.Operator == domain.OpNotEqual {
			return !equal
		}
		return equal
	case domain.OpGreater, domain.OpGreaterOrEqual, domain.OpLess, domain.OpLessOrEqual:
		fd, err1 := decimal.NewFromString(fieldVal)
		od, err2 := decimal.NewFromString(cond.Value)
		if err1 != nil || err2 != nil {
			return false
		}
		switch cond.Operator {
		case domain.OpGreater:
			return fd.GreaterThan(od)
		case domain.OpGreaterOrEqual:
			return fd.GreaterThanOrEqual(od)
		case domain.OpLess:
			return fd.LessThan(od)
		default:
			return fd.LessThanOrEqual(od)
		}
	}
	return false
}

// renderLines materializes the template's line drafts against the event.
func (s *mappingService) renderLines(ctx context.Context, tmpl *domain.MappingTemplate, event *domain.LoanEvent) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, 0, len(tmpl.Lines))
	for i := range tmpl.Lines {
		tl := &tmpl.Lines[i]

		account, err := s.resolveAccount(ctx, tl.AccountSelector, event)
		if err != nil {
			return nil, err
		}
		amount, err := evalAmountExpr(tl.AmountExpr, event)
		if err != nil {
			return nil, fmt.Errorf("template %s line %d: %w", tmpl.TemplateID, i+1, err)
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("%w: expression %q produced %s", ErrBadAmountExpr, tl.AmountExpr, amount.String())
		}

		line := domain.JournalLine{
			AccountID:    account.AccountID,
			CurrencyCode: event.CurrencyCode,
			Memo:         tl.Memo,
		}
		if tl.Side == domain.Debit {
			line.Debit = amount
		} else {
			line.Credit = amount
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// resolveAccount turns an account selector into an account. A selector is
// either a literal account code or "event.<attr>", where the attribute value
// holds the code.
func (s *mappingService) resolveAccount(ctx context.Context, selector string, event *domain.LoanEvent) (*domain.Account, error) {
	code := selector
	if attr, ok := strings.CutPrefix(selector, "event."); ok {
		v, found := event.Attributes[attr]
		if !found {
			return nil, fmt.Errorf("%w: event %s has no attribute %q", ErrBadAccountSelector, event.EventID, attr)
		}
		code = v
	}
	account, err := s.accountSvc.GetAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account with code %q", ErrBadAccountSelector, code)
		}
		return nil, fmt.Errorf("failed to resolve account code %q: %w", code, err)
	}
	return account, nil
}

// evalAmountExpr evaluates a template amount expression against the event.
// The grammar is deliberately small: a decimal literal, "amount",
// "attr.<name>", or a product of two such factors joined by "*". Everything
// stays in exact decimal arithmetic.
func evalAmountExpr(expr string, event *domain.LoanEvent) (decimal.Decimal, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return decimal.Zero, fmt.Errorf("%w: empty expression", ErrBadAmountExpr)
	}

	if left, right, found := strings.Cut(expr, "*"); found {
		if strings.Contains(right, "*") {
			return decimal.Zero, fmt.Errorf("%w: %q has more than one product", ErrBadAmountExpr, expr)
		}
		lv, err := evalAmountFactor(left, event)
		if err != nil {
			return decimal.Zero, err
		}
		rv, err := evalAmountFactor(right, event)
		if err != nil {
			return decimal.Zero, err
		}
		return lv.Mul(rv), nil
	}
	return evalAmountFactor(expr, event)
}

func evalAmountFactor(factor string, event *domain.LoanEvent) (decimal.Decimal, error) {
	factor = strings.TrimSpace(factor)
	if factor == "amount" {
		return event.Amount, nil
	}
	if strings.HasPrefix(factor, "attr.") {
		v, ok := event.Field(factor)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: event has no %q", ErrBadAmountExpr, factor)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrBadAmountExpr, factor)
		}
		return d, nil
	}
	d, err := decimal.NewFromString(factor)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal literal", ErrBadAmountExpr, factor)
	}
	return d, nil
}

// validateAmountExpr checks the expression grammar without an event, so bad
// templates are rejected at creation rather than at first use.
func validateAmountExpr(expr string) error {
	validFactor := func(f string) error {
		f = strings.TrimSpace(f)
		if f == "amount" || strings.HasPrefix(f, "attr.") {
			return nil
		}
		if _, err := decimal.NewFromString(f); err != nil {
			return fmt.Errorf("%w: %q", ErrBadAmountExpr, f)
		}
		return nil
	}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return fmt.Errorf("%w: empty expression", ErrBadAmountExpr)
	}
	if left, right, found := strings.Cut(expr, "*"); found {
		if strings.Contains(right, "*") {
			return fmt.Errorf("%w: %q has more than one product", ErrBadAmountExpr, expr)
		}
		if err := validFactor(left); err != nil {
			return err
		}
		return validFactor(right)
	}
	return validFactor(expr)
}

// CreateTemplate persists a new template after validating its conditions and
// line expressions.
func (s *mappingService) CreateTemplate(ctx context.Context, req dto.CreateMappingTemplateRequest, creatorUserID string) (*domain.MappingTemplate, error) {
	logger := s.GetLogger(ctx)

	if !req.EventType.IsValid() {
		return nil, fmt.Errorf("%w: unknown event type %q", apperrors.ErrValidation, req.EventType)
	}
	if len(req.Lines) < 2 {
		return nil, fmt.Errorf("%w: template needs at least two lines", apperrors.ErrValidation)
	}

	conditions := make([]domain.TemplateCondition, len(req.Conditions))
	for i, c := range req.Conditions {
		if !c.Operator.IsValid() {
			return nil, fmt.Errorf("%w: unknown operator %q", apperrors.ErrValidation, c.Operator)
		}
		if c.Field == "" {
			return nil, fmt.Errorf("%w: condition %d has no field", apperrors.ErrValidation, i+1)
		}
		if c.Operator == domain.OpIn && len(c.Values) == 0 {
			return nil, fmt.Errorf("%w: IN condition %d has no values", apperrors.ErrValidation, i+1)
		}
		conditions[i] = domain.TemplateCondition{
			Field:    c.Field,
			Operator: c.Operator,
			Value:    c.Value,
			Values:   c.Values,
		}
	}

	lines := make([]domain.TemplateLine, len(req.Lines))
	for i, l := range req.Lines {
		if l.Side != domain.Debit && l.Side != domain.Credit {
			return nil, fmt.Errorf("%w: line %d side must be DEBIT or CREDIT", apperrors.ErrValidation, i+1)
		}
		if err := validateAmountExpr(l.AmountExpr); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, i+1, err)
		}
		if l.AccountSelector == "" {
			return nil, fmt.Errorf("%w: line %d has no account selector", apperrors.ErrValidation, i+1)
		}
		lines[i] = domain.TemplateLine{
			AccountSelector: l.AccountSelector,
			Side:            l.Side,
			AmountExpr:      l.AmountExpr,
			Memo:            l.Memo,
		}
	}

	now := time.Now().UTC()
	template := domain.MappingTemplate{
		TemplateID: uuid.NewString(),
		Name:       req.Name,
		EventType:  req.EventType,
		Priority:   req.Priority,
		IsActive:   true,
		Conditions: conditions,
		Lines:      lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.templateRepo.SaveTemplate(ctx, template); err != nil {
		logger.Error("Failed to save template", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	logger.Info("Mapping template created",
		slog.String("template_id", template.TemplateID),
		slog.String("event_type", string(template.EventType)))
	return &template, nil
}

// GetTemplateByID retrieves a template with conditions and lines.
func (s *mappingService) GetTemplateByID(ctx context.Context, templateID string) (*domain.MappingTemplate, error) {
	template, err := s.templateRepo.FindTemplateByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to find template %s: %w", templateID, err)
	}
	return template, nil
}

// ListTemplates retrieves all templates.
func (s *mappingService) ListTemplates(ctx context.Context) ([]domain.MappingTemplate, error) {
	templates, err := s.templateRepo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// DeactivateTemplate marks a template inactive so Resolve skips it.
func (s *mappingService) DeactivateTemplate(ctx context.Context, templateID string, userID string) error {
	logger := s.GetLogger(ctx)

	if _, err := s.templateRepo.FindTemplateByID(ctx, templateID); err != nil {
		return fmt.Errorf("failed to find template %s: %w", templateID, err)
	}
	if err := s.templateRepo.DeactivateTemplate(ctx, templateID, userID); err != nil {
		logger.Error("Failed to deactivate template", slog.String("error", err.Error()), slog.String("template_id", templateID))
		return fmt.Errorf("failed to deactivate template: %w", err)
	}

	logger.Info("Mapping template deactivated", slog.String("template_id", templateID))
	return nil
}
