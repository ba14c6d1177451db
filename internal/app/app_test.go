package app

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/cache"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/mocks"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newMockSource returns a source mock whose Name may be called freely.
func newMockSource(t *testing.T, name string) *mocks.MockQuoteSource {
	t.Helper()

	m := mocks.NewMockQuoteSource(t)
	m.EXPECT().Name().Return(name).Maybe()

	return m
}

// newMockSources returns one source mock per category.
func newMockSources(t *testing.T) map[domain.Category]*mocks.MockQuoteSource {
	t.Helper()

	out := make(map[domain.Category]*mocks.MockQuoteSource)
	for _, c := range domain.Categories() {
		out[c] = newMockSource(t, "mock-"+c.String())
	}

	return out
}

func asPorts(sources map[domain.Category]*mocks.MockQuoteSource) map[domain.Category]ports.QuoteSource {
	out := make(map[domain.Category]ports.QuoteSource, len(sources))
	for c, s := range sources {
		out[c] = s
	}

	return out
}

var cachedCategories = []domain.Category{domain.CategoryLDS, domain.CategorySoftware}

// testClock is a manually advanced clock for cache freshness.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestCache(clock *testClock) *cache.ScrapeCache {
	if clock == nil {
		return cache.NewScrapeCache(cachedCategories)
	}

	return cache.NewScrapeCache(cachedCategories, cache.WithClock(clock.Now))
}
