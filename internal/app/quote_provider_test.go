package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/mocks"
)

func newProvider(t *testing.T, sources map[domain.Category]*mocks.MockQuoteSource, opts ...func(*QuoteProviderConfig)) *QuoteProvider {
	t.Helper()

	cfg := QuoteProviderConfig{
		Sources: asPorts(sources),
		Cache:   newTestCache(nil),
		TTL:     ttl,
		Logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := NewQuoteProvider(cfg)
	require.NoError(t, err)

	return p
}

func TestQuoteProvider_InvalidCategoryMakesNoCalls(t *testing.T) {
	sources := newMockSources(t)
	p := newProvider(t, sources)

	for _, raw := range []string{"", "poetry", "ZEN", "zen-quotes"} {
		q, err := p.GetQuote(context.Background(), raw)

		require.Error(t, err, raw)
		assert.True(t, domain.IsInvalidCategory(err))
		assert.True(t, domain.IsValidation(err))
		assert.True(t, q.IsZero())
	}

	for _, s := range sources {
		s.AssertNotCalled(t, "Fetch", mock.Anything)
	}
}

func TestQuoteProvider_TrimsCategory(t *testing.T) {
	sources := newMockSources(t)
	sources[domain.CategoryZen].EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"Breathe. - Anon"}, nil)

	p := newProvider(t, sources)

	q, err := p.GetQuote(context.Background(), "  zen ")

	require.NoError(t, err)
	assert.Equal(t, domain.Quote("Breathe. - Anon"), q)
}

func TestQuoteProvider_EveryCategorySurvivesTotalOutage(t *testing.T) {
	sources := newMockSources(t)
	for _, s := range sources {
		s.EXPECT().Fetch(mock.Anything).Return(nil, errors.New("network unreachable"))
	}

	p := newProvider(t, sources)

	for _, c := range domain.Categories() {
		t.Run(c.String(), func(t *testing.T) {
			q, err := p.GetQuote(context.Background(), c.String())

			require.NoError(t, err)
			assert.False(t, q.IsZero())
			assert.Equal(t, domain.FallbackQuote(c), q)
		})
	}
}

func TestQuoteProvider_DispatchesToCategorySource(t *testing.T) {
	sources := newMockSources(t)
	sources[domain.CategoryBible].EXPECT().Fetch(mock.Anything).
		Return([]domain.Quote{"Jesus wept. (John 11:35)"}, nil).Once()

	p := newProvider(t, sources)

	q, err := p.GetQuote(context.Background(), "bible")

	require.NoError(t, err)
	assert.Equal(t, domain.Quote("Jesus wept. (John 11:35)"), q)
	sources[domain.CategoryZen].AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestNewQuoteProvider_Validation(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		sources := asPorts(newMockSources(t))
		delete(sources, domain.CategoryPhilosophy)

		_, err := NewQuoteProvider(QuoteProviderConfig{Sources: sources, Cache: newTestCache(nil)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "philosophy")
	})

	t.Run("missing cache", func(t *testing.T) {
		_, err := NewQuoteProvider(QuoteProviderConfig{Sources: asPorts(newMockSources(t))})

		assert.Error(t, err)
	})

	t.Run("no cached categories needs no cache", func(t *testing.T) {
		_, err := NewQuoteProvider(QuoteProviderConfig{
			Sources:          asPorts(newMockSources(t)),
			CachedCategories: []domain.Category{},
		})

		assert.NoError(t, err)
	})
}

func TestQuoteProvider_WarmFillsCachedCategoriesOnly(t *testing.T) {
	sources := newMockSources(t)
	sources[domain.CategoryLDS].EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"lds"}, nil).Once()
	sources[domain.CategorySoftware].EXPECT().Fetch(mock.Anything).
		Return(nil, domain.NewUnavailableError("goodreads", "blocked")).Once()

	c := newTestCache(nil)
	p := newProvider(t, sources, func(cfg *QuoteProviderConfig) { cfg.Cache = c })

	p.Warm(context.Background())

	_, ok := c.Get(domain.CategoryLDS)
	assert.True(t, ok)
	_, ok = c.Get(domain.CategorySoftware)
	assert.False(t, ok)

	sources[domain.CategoryZen].AssertNotCalled(t, "Fetch", mock.Anything)
	sources[domain.CategoryPhilosophy].AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestQuoteProvider_WarmSkipsFreshCategories(t *testing.T) {
	sources := newMockSources(t)
	sources[domain.CategorySoftware].EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"sw"}, nil).Once()

	c := newTestCache(nil)
	c.Put(domain.CategoryLDS, []domain.Quote{"already"})

	p := newProvider(t, sources, func(cfg *QuoteProviderConfig) { cfg.Cache = c })

	p.Warm(context.Background())

	sources[domain.CategoryLDS].AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestQuoteProvider_Restore(t *testing.T) {
	refreshed := time.Now().Add(-time.Hour)

	snapshots := mocks.NewMockCacheSnapshotStore(t)
	snapshots.EXPECT().Load(mock.Anything, domain.CategoryLDS).
		Return(&domain.CacheEntry{Quotes: []domain.Quote{"persisted"}, RefreshedAt: refreshed}, nil)
	snapshots.EXPECT().Load(mock.Anything, domain.CategorySoftware).
		Return(nil, errors.New("redis down"))

	c := newTestCache(nil)
	sources := newMockSources(t)
	p := newProvider(t, sources, func(cfg *QuoteProviderConfig) {
		cfg.Cache = c
		cfg.Snapshots = snapshots
	})

	p.Restore(context.Background())

	entry, ok := c.Get(domain.CategoryLDS)
	require.True(t, ok)
	assert.Equal(t, []domain.Quote{"persisted"}, entry.Quotes)
	assert.Equal(t, refreshed, entry.RefreshedAt)

	// Restored and fresh, so no live fetch.
	q, err := p.GetQuote(context.Background(), "lds")
	require.NoError(t, err)
	assert.Equal(t, domain.Quote("persisted"), q)
}

func TestQuoteProvider_RestoreWithoutStoreIsNoop(t *testing.T) {
	p := newProvider(t, newMockSources(t))

	assert.NotPanics(t, func() { p.Restore(context.Background()) })
}
