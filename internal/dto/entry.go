package dto

import (
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest is one line of a draft entry. Exactly one of debit
// or credit must be positive.
type CreateEntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Memo         string          `json:"memo"`
}

// CreateEntryRequest defines the data needed to create a draft journal entry.
// When PeriodID is empty the period containing EntryDate is resolved.
type CreateEntryRequest struct {
	PeriodID      *string                  `json:"periodID"`
	EntryDate     time.Time                `json:"entryDate" binding:"required"`
	Description   string                   `json:"description" binding:"required"`
	CurrencyCode  string                   `json:"currencyCode" binding:"required,len=3,uppercase"`
	Lines         []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
	SourceEventID *string                  `json:"sourceEventID"`
}

// VoidEntryRequest defines the data for voiding a posted entry.
type VoidEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
	// VoidDate is the entry date of the offsetting entry. Defaults to today;
	// must land in an open period.
	VoidDate *time.Time `json:"voidDate"`
}

// EntryLineResponse defines the data returned for a journal line.
type EntryLineResponse struct {
	LineID         string          `json:"lineID"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	CurrencyCode   string          `json:"currencyCode"`
	Memo           string          `json:"memo,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID       string              `json:"entryID"`
	PeriodID      string              `json:"periodID"`
	EntryDate     time.Time           `json:"entryDate"`
	Description   string              `json:"description"`
	CurrencyCode  string              `json:"currencyCode"`
	Status        domain.EntryStatus  `json:"status"`
	SequenceNo    *int64              `json:"sequenceNo,omitempty"`
	PostedAt      *time.Time          `json:"postedAt,omitempty"`
	PostedBy      *string             `json:"postedBy,omitempty"`
	SourceEventID *string             `json:"sourceEventID,omitempty"`
	VoidingEntry  *string             `json:"voidingEntryID,omitempty"`
	VoidedEntry   *string             `json:"voidedEntryID,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	Lines         []EntryLineResponse `json:"lines,omitempty"`
}

// ToEntryLineResponse converts a domain.JournalLine to EntryLineResponse DTO.
func ToEntryLineResponse(line *domain.JournalLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:         line.LineID,
		AccountID:      line.AccountID,
		Debit:          line.Debit,
		Credit:         line.Credit,
		CurrencyCode:   line.CurrencyCode,
		Memo:           line.Memo,
		RunningBalance: line.RunningBalance,
	}
}

// ToEntryLineResponses converts a slice of domain.JournalLine to []EntryLineResponse.
func ToEntryLineResponses(lines []domain.JournalLine) []EntryLineResponse {
	responses := make([]EntryLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToEntryLineResponse(&lines[i])
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(entry *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:       entry.EntryID,
		PeriodID:      entry.PeriodID,
		EntryDate:     entry.EntryDate,
		Description:   entry.Description,
		CurrencyCode:  entry.CurrencyCode,
		Status:        entry.Status,
		SequenceNo:    entry.SequenceNo,
		PostedAt:      entry.PostedAt,
		PostedBy:      entry.PostedBy,
		SourceEventID: entry.SourceEventID,
		VoidingEntry:  entry.VoidingEntryID,
		VoidedEntry:   entry.VoidedEntryID,
		CreatedAt:     entry.CreatedAt,
		CreatedBy:     entry.CreatedBy,
		Lines:         ToEntryLineResponses(entry.Lines),
	}
}

// ListEntriesParams defines query parameters for listing entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	PeriodID  *string `form:"periodID"`
	Status    *string `form:"status"`
}

// ListEntriesResponse wraps a page of entries with the token for the next page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesParams defines query parameters for listing account lines.
type ListLinesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse wraps a page of lines with the token for the next page.
type ListLinesResponse struct {
	Lines     []EntryLineResponse `json:"lines"`
	NextToken *string             `json:"nextToken,omitempty"`
}
