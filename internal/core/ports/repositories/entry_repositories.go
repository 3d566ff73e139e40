package repositories

import (
	"context"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of journal entries using token-based
	// pagination, optionally filtered by period and status.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, periodID *string, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// LineReader defines read operations for journal line data
type LineReader interface {
	// FindLinesByEntryID retrieves all lines associated with a single entry ID.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entry IDs, grouped by entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)

	// ListLinesByAccountID retrieves a paginated list of posted lines for a
	// specific account using token-based pagination.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// EntryWriter defines write operations for journal entry data
type EntryWriter interface {
	// SaveDraftEntry persists a new DRAFT entry and its lines. No balances change.
	SaveDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateDraftEntry replaces the header fields and lines of a DRAFT entry.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// PostEntry transitions a DRAFT entry to POSTED within a single database
	// transaction: the entry and its period rows are locked, the period must be
	// open and contain the entry date, a sequence number is claimed from the
	// period row, referenced accounts are locked and must be active leaves, and
	// account balances plus per-line running balances are updated.
	// Returns the posted entry.
	PostEntry(ctx context.Context, entryID string, postedBy string, postedAt time.Time, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)

	// SaveVoidingEntry posts the offsetting entry and marks the original entry
	// VOID with both void links set, all within one transaction.
	// Returns the posted voiding entry.
	SaveVoidingEntry(ctx context.Context, voiding domain.JournalEntry, voidedEntryID string, balanceChanges map[string]decimal.Decimal) (*domain.JournalEntry, error)
}

// EntryRepositoryFacade combines all entry-related repository interfaces
// This is a facade for clients that need access to all operations
type EntryRepositoryFacade interface {
	EntryReader
	LineReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
