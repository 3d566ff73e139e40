package services

import (
	"context"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/lendaro/loanledger/internal/dto"
)

// EntryReaderSvc defines read operations for journal entry data
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// EntryWriterSvc defines write operations for journal entry data
type EntryWriterSvc interface {
	// CreateDraft persists a new DRAFT entry after structural validation.
	CreateDraft(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// Post transitions a DRAFT entry to POSTED, enforcing balance, period and
	// account invariants inside one transaction.
	Post(ctx context.Context, entryID string, postingUserID string) (*domain.JournalEntry, error)

	// PostDraftDirect creates a draft and posts it in sequence. Used by the
	// mapping and accrual callers that never leave entries in draft.
	PostDraftDirect(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error)

	// Void creates the offsetting entry for a POSTED entry in an open period,
	// marks the original VOID and links the pair.
	Void(ctx context.Context, entryID string, userID string, req dto.VoidEntryRequest) (*domain.JournalEntry, error)
}

// LineReaderSvc defines read operations for journal line data
type LineReaderSvc interface {
	// ListLinesByAccount retrieves posted lines for a specific account.
	ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// EntrySvcFacade combines all entry-related service interfaces
// This is a facade for clients that need access to all operations
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
	LineReaderSvc
}
