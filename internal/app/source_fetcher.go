package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

// defaultRefreshTimeout bounds a shared live fetch once it is detached from
// the caller that started it.
const defaultRefreshTimeout = 2 * time.Minute

// SourceFetcherConfig configures the fetcher for one category.
type SourceFetcherConfig struct {
	Category domain.Category
	Source   ports.QuoteSource

	// Cache, when set, makes the category a cached category.
	Cache ports.ScrapeCache

	// TTL is the freshness window. Zero disables freshness checks so every
	// request goes live, with the cache only used as a stale fallback.
	TTL time.Duration

	// Snapshots optionally persists successful refreshes.
	Snapshots ports.CacheSnapshotStore

	// RefreshTimeout bounds a detached live fetch. Defaults to two minutes.
	RefreshTimeout time.Duration

	Metrics *Metrics
	Logger  *slog.Logger
}

// SourceFetcher applies the fetch policy for one category: fresh cache,
// then a live fetch, then stale cache, then the static fallback.
type SourceFetcher struct {
	category       domain.Category
	source         ports.QuoteSource
	cache          ports.ScrapeCache
	ttl            time.Duration
	snapshots      ports.CacheSnapshotStore
	refreshTimeout time.Duration
	fallback       domain.Quote
	metrics        *Metrics
	logger         *slog.Logger

	group singleflight.Group
}

// NewSourceFetcher creates a fetcher. Panics if Source is nil.
func NewSourceFetcher(cfg SourceFetcherConfig) *SourceFetcher {
	if cfg.Source == nil {
		panic("SourceFetcher: Source is required for " + cfg.Category.String())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics()
	}

	timeout := cfg.RefreshTimeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}

	return &SourceFetcher{
		category:       cfg.Category,
		source:         cfg.Source,
		cache:          cfg.Cache,
		ttl:            cfg.TTL,
		snapshots:      cfg.Snapshots,
		refreshTimeout: timeout,
		fallback:       domain.FallbackQuote(cfg.Category),
		metrics:        metrics,
		logger: logger.With(
			slog.String("component", "app.SourceFetcher"),
			slog.String("category", cfg.Category.String()),
			slog.String("source", cfg.Source.Name()),
		),
	}
}

// Category returns the category served by this fetcher.
func (f *SourceFetcher) Category() domain.Category {
	return f.category
}

// Cached reports whether the category keeps a scrape cache.
func (f *SourceFetcher) Cached() bool {
	return f.cache != nil
}

// Fetch returns a quote for the category. It never fails: every internal
// error ends in a stale cached quote or the static fallback.
func (f *SourceFetcher) Fetch(ctx context.Context) domain.Quote {
	if f.cache != nil && f.ttl > 0 && f.cache.IsFresh(f.category, f.ttl) {
		if entry, ok := f.cache.Get(f.category); ok {
			return f.serve(ctx, OutcomeCache, entry.Random())
		}
	}

	quotes, err := f.live(ctx)
	if err == nil && len(quotes) > 0 {
		return f.serve(ctx, OutcomeLive, domain.PickRandom(quotes))
	}

	if err == nil {
		err = domain.NewNoQuotesError(f.source.Name(), "empty result")
	}

	f.logger.WarnContext(ctx, "live fetch failed", slog.Any("error", err))

	if f.cache != nil {
		if entry, ok := f.cache.Get(f.category); ok {
			return f.serve(ctx, OutcomeStale, entry.Random())
		}
	}

	return f.serve(ctx, OutcomeFallback, f.fallback)
}

// Refresh performs a live fetch and fills the cache, without serving a quote.
func (f *SourceFetcher) Refresh(ctx context.Context) (int, error) {
	quotes, err := f.live(ctx)
	if err != nil {
		return 0, err
	}

	return len(quotes), nil
}

// live runs the source. For cached categories concurrent callers share one
// fetch, which keeps running if the caller that started it goes away.
func (f *SourceFetcher) live(ctx context.Context) ([]domain.Quote, error) {
	if f.cache == nil {
		return f.fetchSource(ctx)
	}

	ch := f.group.DoChan(f.category.String(), func() (any, error) {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.refreshTimeout)
		defer cancel()

		quotes, err := f.fetchSource(detached)
		if err != nil {
			return nil, err
		}

		f.cache.Put(f.category, quotes)
		f.persist(detached)

		return quotes, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			f.logger.DebugContext(ctx, "joined in-flight fetch")
		}

		quotes, _ := res.Val.([]domain.Quote)

		return quotes, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *SourceFetcher) fetchSource(ctx context.Context) ([]domain.Quote, error) {
	start := time.Now()

	quotes, err := f.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		return nil, domain.NewNoQuotesError(f.source.Name(), "empty result")
	}

	f.logger.DebugContext(ctx, "live fetch succeeded",
		slog.Int("candidates", len(quotes)),
		slog.Duration("duration", time.Since(start)))

	return quotes, nil
}

// persist saves the current cache entry. Failures are only logged.
func (f *SourceFetcher) persist(ctx context.Context) {
	if f.snapshots == nil {
		return
	}

	entry, ok := f.cache.Get(f.category)
	if !ok {
		return
	}

	if err := f.snapshots.Save(ctx, f.category, &entry); err != nil {
		f.logger.WarnContext(ctx, "failed to persist cache snapshot", slog.Any("error", err))
	}
}

func (f *SourceFetcher) serve(ctx context.Context, outcome Outcome, quote domain.Quote) domain.Quote {
	if quote.IsZero() {
		outcome, quote = OutcomeFallback, f.fallback
	}

	f.metrics.recordAcquisition(ctx, f.category, outcome)
	f.logger.InfoContext(ctx, "quote acquired", slog.String("outcome", string(outcome)))

	return quote
}
