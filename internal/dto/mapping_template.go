package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
)

// TemplateConditionRequest is one comparison in a template's condition list.
// Value carries the operand for scalar operators; Values for IN.
type TemplateConditionRequest struct {
	Field    string                   `json:"field" binding:"required"`
	Operator domain.ConditionOperator `json:"operator" binding:"required,oneof=EQ NE GT GTE LT LTE IN"`
	Value    string                   `json:"value"`
	Values   []string                 `json:"values"`
}

// TemplateLineRequest is one journal line the template produces.
type TemplateLineRequest struct {
	AccountSelector string                 `json:"accountSelector" binding:"required"`
	Side            domain.TransactionType `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	AmountExpr      string                 `json:"amountExpr" binding:"required"`
	Memo            string                 `json:"memo"`
}

// CreateMappingTemplateRequest defines the data needed to create a mapping template.
type CreateMappingTemplateRequest struct {
	Name       string                     `json:"name" binding:"required"`
	EventType  domain.LoanEventType       `json:"eventType" binding:"required,oneof=DISBURSEMENT REPAYMENT FEE WRITE_OFF"`
	Priority   int                        `json:"priority"`
	Conditions []TemplateConditionRequest `json:"conditions" binding:"dive"`
	Lines      []TemplateLineRequest      `json:"lines" binding:"required,min=2,dive"`
}

// TemplateConditionResponse mirrors domain.TemplateCondition.
type TemplateConditionResponse struct {
	Field    string                   `json:"field"`
	Operator domain.ConditionOperator `json:"operator"`
	Value    string                   `json:"value"`
	Values   []string                 `json:"values,omitempty"`
}

// TemplateLineResponse mirrors domain.TemplateLine.
type TemplateLineResponse struct {
	AccountSelector string                 `json:"accountSelector"`
	Side            domain.TransactionType `json:"side"`
	AmountExpr      string                 `json:"amountExpr"`
	Memo            string                 `json:"memo,omitempty"`
}

// MappingTemplateResponse defines the data returned for a mapping template.
type MappingTemplateResponse struct {
	TemplateID    string                      `json:"templateID"`
	Name          string                      `json:"name"`
	EventType     domain.LoanEventType        `json:"eventType"`
	Priority      int                         `json:"priority"`
	IsActive      bool                        `json:"isActive"`
	Conditions    []TemplateConditionResponse `json:"conditions"`
	Lines         []TemplateLineResponse      `json:"lines"`
	CreatedAt     time.Time                   `json:"createdAt"`
	CreatedBy     string                      `json:"createdBy"`
	LastUpdatedAt time.Time                   `json:"lastUpdatedAt"`
	LastUpdatedBy string                      `json:"lastUpdatedBy"`
}

// ToMappingTemplateResponse converts a domain.MappingTemplate to MappingTemplateResponse DTO
func ToMappingTemplateResponse(t *domain.MappingTemplate) MappingTemplateResponse {
	conditions := make([]TemplateConditionResponse, len(t.Conditions))
	for i, c := range t.Conditions {
		conditions[i] = TemplateConditionResponse{
			Field:    c.Field,
			Operator: c.Operator,
			Value:    c.Value,
			Values:   c.Values,
		}
	}
	lines := make([]TemplateLineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = TemplateLineResponse{
			AccountSelector: l.AccountSelector,
			Side:            l.Side,
			AmountExpr:      l.AmountExpr,
			Memo:            l.Memo,
		}
	}
	return MappingTemplateResponse{
		TemplateID:    t.TemplateID,
		Name:          t.Name,
		EventType:     t.EventType,
		Priority:      t.Priority,
		IsActive:      t.IsActive,
		Conditions:    conditions,
		Lines:         lines,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		LastUpdatedAt: t.LastUpdatedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}

// ToListMappingTemplateResponse converts a slice of domain.MappingTemplate to response DTOs
func ToListMappingTemplateResponse(templates []domain.MappingTemplate) []MappingTemplateResponse {
	res := make([]MappingTemplateResponse, len(templates))
	for i := range templates {
		res[i] = ToMappingTemplateResponse(&templates[i])
	}
	return res
}

// ListMappingTemplatesResponse wraps the list of templates.
type ListMappingTemplatesResponse struct {
	Templates []MappingTemplateResponse `json:"templates"`
}
