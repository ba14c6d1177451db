package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/mocks"
)

const ttl = 24 * time.Hour

func TestSourceFetcher_UncachedLive(t *testing.T) {
	source := newMockSource(t, "zenquotes")
	source.EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"Be water. - Bruce Lee"}, nil).Twice()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryZen,
		Source:   source,
		Logger:   discardLogger(),
	})

	assert.Equal(t, domain.Quote("Be water. - Bruce Lee"), f.Fetch(context.Background()))
	assert.Equal(t, domain.Quote("Be water. - Bruce Lee"), f.Fetch(context.Background()))
	assert.False(t, f.Cached())
}

func TestSourceFetcher_UncachedFailureServesFallback(t *testing.T) {
	tests := []struct {
		name   string
		quotes []domain.Quote
		err    error
	}{
		{"transport error", nil, domain.NewUnavailableError("zenquotes", "timeout")},
		{"no quotes error", nil, domain.NewNoQuotesError("zenquotes", "empty array")},
		{"empty result without error", []domain.Quote{}, nil},
		{"blank quote", []domain.Quote{"  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newMockSource(t, "zenquotes")
			source.EXPECT().Fetch(mock.Anything).Return(tt.quotes, tt.err)

			f := NewSourceFetcher(SourceFetcherConfig{
				Category: domain.CategoryZen,
				Source:   source,
				Logger:   discardLogger(),
			})

			assert.Equal(t, domain.FallbackQuote(domain.CategoryZen), f.Fetch(context.Background()))
		})
	}
}

func TestSourceFetcher_FreshCacheSkipsSource(t *testing.T) {
	clock := &testClock{now: time.Now()}
	c := newTestCache(clock)
	c.Put(domain.CategoryLDS, []domain.Quote{"cached - A"})
	clock.now = clock.now.Add(ttl - time.Second)

	source := newMockSource(t, "goodreads-lds")

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryLDS,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	assert.Equal(t, domain.Quote("cached - A"), f.Fetch(context.Background()))
	source.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestSourceFetcher_ExpiredCacheRefreshes(t *testing.T) {
	clock := &testClock{now: time.Now()}
	c := newTestCache(clock)
	c.Put(domain.CategorySoftware, []domain.Quote{"old - A"})
	clock.now = clock.now.Add(ttl + time.Second)

	source := newMockSource(t, "goodreads-programming")
	source.EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"new - B"}, nil).Once()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategorySoftware,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	assert.Equal(t, domain.Quote("new - B"), f.Fetch(context.Background()))

	entry, ok := c.Get(domain.CategorySoftware)
	require.True(t, ok)
	assert.Equal(t, []domain.Quote{"new - B"}, entry.Quotes)
	assert.Equal(t, clock.now, entry.RefreshedAt)

	// Now fresh: served without another fetch.
	assert.Equal(t, domain.Quote("new - B"), f.Fetch(context.Background()))
}

func TestSourceFetcher_FailureServesStaleCache(t *testing.T) {
	clock := &testClock{now: time.Now()}
	c := newTestCache(clock)
	c.Put(domain.CategoryLDS, []domain.Quote{"stale - A"})
	refreshed := clock.now
	clock.now = clock.now.Add(30 * 24 * time.Hour)

	source := newMockSource(t, "goodreads-lds")
	source.EXPECT().Fetch(mock.Anything).Return(nil, domain.NewNoQuotesError("goodreads-lds", "empty page 1"))

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryLDS,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	assert.Equal(t, domain.Quote("stale - A"), f.Fetch(context.Background()))

	entry, ok := c.Get(domain.CategoryLDS)
	require.True(t, ok)
	assert.Equal(t, refreshed, entry.RefreshedAt, "failed fetch must not touch the cache")
}

func TestSourceFetcher_FailureWithEmptyCacheServesFallback(t *testing.T) {
	c := newTestCache(nil)

	source := newMockSource(t, "goodreads-lds")
	source.EXPECT().Fetch(mock.Anything).Return(nil, domain.NewUnavailableError("goodreads-lds", "403"))

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryLDS,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	assert.Equal(t, domain.FallbackQuote(domain.CategoryLDS), f.Fetch(context.Background()))

	_, ok := c.Get(domain.CategoryLDS)
	assert.False(t, ok)
}

func TestSourceFetcher_ZeroTTLAlwaysGoesLive(t *testing.T) {
	c := newTestCache(nil)
	c.Put(domain.CategoryLDS, []domain.Quote{"cached"})

	source := newMockSource(t, "goodreads-lds")
	source.EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"live"}, nil).Twice()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryLDS,
		Source:   source,
		Cache:    c,
		Logger:   discardLogger(),
	})

	assert.Equal(t, domain.Quote("live"), f.Fetch(context.Background()))
	assert.Equal(t, domain.Quote("live"), f.Fetch(context.Background()))
}

func TestSourceFetcher_PersistsSnapshot(t *testing.T) {
	c := newTestCache(nil)

	source := newMockSource(t, "goodreads-lds")
	source.EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"a", "b"}, nil)

	snapshots := mocks.NewMockCacheSnapshotStore(t)
	snapshots.EXPECT().
		Save(mock.Anything, domain.CategoryLDS, mock.MatchedBy(func(e *domain.CacheEntry) bool {
			return len(e.Quotes) == 2
		})).
		Return(errors.New("redis down")).
		Once()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category:  domain.CategoryLDS,
		Source:    source,
		Cache:     c,
		TTL:       ttl,
		Snapshots: snapshots,
		Logger:    discardLogger(),
	})

	got := f.Fetch(context.Background())

	assert.Contains(t, []domain.Quote{"a", "b"}, got, "snapshot failure is not surfaced")
}

func TestSourceFetcher_CoalescesConcurrentScrapes(t *testing.T) {
	c := newTestCache(nil)
	release := make(chan struct{})

	source := newMockSource(t, "goodreads-programming")
	source.EXPECT().Fetch(mock.Anything).
		RunAndReturn(func(context.Context) ([]domain.Quote, error) {
			<-release
			return []domain.Quote{"one", "two"}, nil
		}).
		Once()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategorySoftware,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	const callers = 8

	var wg sync.WaitGroup
	results := make([]domain.Quote, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()
			results[i] = f.Fetch(context.Background())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, q := range results {
		assert.Contains(t, []domain.Quote{"one", "two"}, q)
	}
}

func TestSourceFetcher_AbandonedCallerDoesNotCancelSharedScrape(t *testing.T) {
	c := newTestCache(nil)
	release := make(chan struct{})
	done := make(chan struct{})

	source := newMockSource(t, "goodreads-lds")
	source.EXPECT().Fetch(mock.Anything).
		RunAndReturn(func(ctx context.Context) ([]domain.Quote, error) {
			defer close(done)
			<-release

			if err := ctx.Err(); err != nil {
				return nil, err
			}

			return []domain.Quote{"survivor"}, nil
		}).
		Once()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryLDS,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan domain.Quote, 1)

	go func() { served <- f.Fetch(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.Equal(t, domain.FallbackQuote(domain.CategoryLDS), <-served)

	close(release)
	<-done

	assert.Eventually(t, func() bool {
		entry, ok := c.Get(domain.CategoryLDS)
		return ok && entry.Quotes[0] == "survivor"
	}, time.Second, 10*time.Millisecond)
}

func TestSourceFetcher_Refresh(t *testing.T) {
	c := newTestCache(nil)

	source := newMockSource(t, "goodreads-lds")
	source.EXPECT().Fetch(mock.Anything).Return([]domain.Quote{"a", "b", "c"}, nil).Once()
	source.EXPECT().Fetch(mock.Anything).Return(nil, domain.NewUnavailableError("goodreads-lds", "down")).Once()

	f := NewSourceFetcher(SourceFetcherConfig{
		Category: domain.CategoryLDS,
		Source:   source,
		Cache:    c,
		TTL:      ttl,
		Logger:   discardLogger(),
	})

	n, err := f.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.Refresh(context.Background())
	require.Error(t, err)

	entry, ok := c.Get(domain.CategoryLDS)
	require.True(t, ok)
	assert.Len(t, entry.Quotes, 3)
}

func TestNewSourceFetcher_PanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() {
		NewSourceFetcher(SourceFetcherConfig{Category: domain.CategoryZen})
	})
}
