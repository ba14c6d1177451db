// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrUnavailable, ErrNoQuotes, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// QuoteSource performs one live acquisition against an external quote source.
//
// Implementations return every usable candidate they found: a single quote for
// structured APIs, the whole list for in-memory sources, all accepted blocks
// for scrapers. Failures are returned as errors; the application layer turns
// them into fallbacks.
type QuoteSource interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Fetch retrieves candidate quotes.
	// Returns domain.ErrUnavailable on transport failures and domain.ErrNoQuotes
	// when the source answered without a usable quote.
	Fetch(ctx context.Context) ([]domain.Quote, error)
}

// ScrapeCache stores the last successful scrape per category.
// Entries are replaced wholesale so readers never observe a partial refresh.
type ScrapeCache interface {
	// Get returns the current entry for category, if any.
	Get(category domain.Category) (domain.CacheEntry, bool)

	// Put replaces the entry for category and stamps it with the current time.
	Put(category domain.Category, quotes []domain.Quote)

	// IsFresh reports whether the entry is non-empty and younger than ttl.
	IsFresh(category domain.Category, ttl time.Duration) bool
}

// CacheSnapshotStore persists scrape cache entries outside the process.
type CacheSnapshotStore interface {
	// Load returns the stored entry for category, or nil when none exists.
	Load(ctx context.Context, category domain.Category) (*domain.CacheEntry, error)

	// Save stores entry for category, replacing any previous snapshot.
	Save(ctx context.Context, category domain.Category, entry *domain.CacheEntry) error
}

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	// System is the persona instruction.
	System string

	// User is the user-role message.
	User string

	// MaxTokens bounds the output length.
	MaxTokens int

	// Temperature is the sampling creativity.
	Temperature float64
}

// TextGenerator calls an external text-generation service.
type TextGenerator interface {
	// Complete returns the generated text.
	// Returns domain.ErrUnavailable if the service is unreachable or misbehaves.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
