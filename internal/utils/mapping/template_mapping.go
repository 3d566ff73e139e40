package mapping

import (
	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/models"
)

// ToModelMappingTemplate converts a domain MappingTemplate header to its model.
// Conditions and lines are mapped separately because they live in child tables.
func ToModelMappingTemplate(d domain.MappingTemplate) models.MappingTemplate {
	return models.MappingTemplate{
		TemplateID:  d.TemplateID,
		Name:        d.Name,
		EventType:   string(d.EventType),
		Priority:    d.Priority,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMappingTemplate assembles a domain MappingTemplate from its header
// row and ordered child rows.
func ToDomainMappingTemplate(m models.MappingTemplate, conditions []models.TemplateCondition, lines []models.TemplateLine) domain.MappingTemplate {
	t := domain.MappingTemplate{
		TemplateID:  m.TemplateID,
		Name:        m.Name,
		EventType:   domain.LoanEventType(m.EventType),
		Priority:    m.Priority,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	for _, c := range conditions {
		t.Conditions = append(t.Conditions, domain.TemplateCondition{
			Field:    c.Field,
			Operator: domain.ConditionOperator(c.Operator),
			Value:    c.Value.String,
			Values:   c.Values,
		})
	}
	for _, l := range lines {
		t.Lines = append(t.Lines, domain.TemplateLine{
			AccountSelector: l.AccountSelector,
			Side:            domain.TransactionType(l.Side),
			AmountExpr:      l.AmountExpr,
			Memo:            l.Memo,
		})
	}
	return t
}

// ToModelLoanEvent converts a domain LoanEvent to a model LoanEvent
func ToModelLoanEvent(d domain.LoanEvent) models.LoanEvent {
	return models.LoanEvent{
		EventID:      d.EventID,
		LoanID:       d.LoanID,
		EventType:    string(d.EventType),
		Amount:       d.Amount,
		CurrencyCode: d.CurrencyCode,
		OccurredAt:   d.OccurredAt,
		Attributes:   d.Attributes,
		EntryID:      NullStringFromPtr(d.EntryID),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoanEvent converts a model LoanEvent to a domain LoanEvent
func ToDomainLoanEvent(m models.LoanEvent) domain.LoanEvent {
	return domain.LoanEvent{
		EventID:      m.EventID,
		LoanID:       m.LoanID,
		EventType:    domain.LoanEventType(m.EventType),
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		OccurredAt:   m.OccurredAt,
		Attributes:   m.Attributes,
		EntryID:      PtrFromNullString(m.EntryID),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanEventSlice converts model loan events to domain loan events
func ToDomainLoanEventSlice(ms []models.LoanEvent) []domain.LoanEvent {
	ds := make([]domain.LoanEvent, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoanEvent(m)
	}
	return ds
}
