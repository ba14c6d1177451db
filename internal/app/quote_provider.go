package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

// defaultWarmConcurrency bounds concurrent warm-up scrapes.
const defaultWarmConcurrency = 2

// cacheRestorer is implemented by caches that can install persisted entries.
type cacheRestorer interface {
	Restore(category domain.Category, entry *domain.CacheEntry) bool
}

// QuoteProviderConfig contains configuration for the quote provider.
type QuoteProviderConfig struct {
	// Sources maps every category to its raw source. All categories are required.
	Sources map[domain.Category]ports.QuoteSource

	// Cache backs the categories listed in CachedCategories.
	Cache ports.ScrapeCache

	// CachedCategories keep a scrape cache. Defaults to lds and software.
	CachedCategories []domain.Category

	// TTL is the shared freshness window for cached categories.
	TTL time.Duration

	// Snapshots optionally persists cache entries across restarts.
	Snapshots ports.CacheSnapshotStore

	// WarmConcurrency bounds concurrent warm-up fetches.
	WarmConcurrency int

	// RefreshTimeout bounds each detached live fetch.
	RefreshTimeout time.Duration

	Metrics *Metrics
	Logger  *slog.Logger
}

// QuoteProvider maps a category to its fetcher.
type QuoteProvider struct {
	fetchers        map[domain.Category]*SourceFetcher
	cache           ports.ScrapeCache
	snapshots       ports.CacheSnapshotStore
	ttl             time.Duration
	warmConcurrency int
	logger          *slog.Logger
}

// NewQuoteProvider builds one fetcher per category.
// Returns an error if a category has no source or a cached category has no cache.
func NewQuoteProvider(cfg QuoteProviderConfig) (*QuoteProvider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cachedCategories := cfg.CachedCategories
	if cachedCategories == nil {
		cachedCategories = []domain.Category{domain.CategoryLDS, domain.CategorySoftware}
	}

	if len(cachedCategories) > 0 && cfg.Cache == nil {
		return nil, errors.New("quote provider: cache is required for cached categories")
	}

	cached := make(map[domain.Category]bool, len(cachedCategories))
	for _, c := range cachedCategories {
		cached[c] = true
	}

	fetchers := make(map[domain.Category]*SourceFetcher, len(cfg.Sources))

	for _, category := range domain.Categories() {
		source, ok := cfg.Sources[category]
		if !ok || source == nil {
			return nil, fmt.Errorf("quote provider: no source for category %q", category)
		}

		fc := SourceFetcherConfig{
			Category:       category,
			Source:         source,
			RefreshTimeout: cfg.RefreshTimeout,
			Metrics:        cfg.Metrics,
			Logger:         logger,
		}

		if cached[category] {
			fc.Cache = cfg.Cache
			fc.TTL = cfg.TTL
			fc.Snapshots = cfg.Snapshots
		}

		fetchers[category] = NewSourceFetcher(fc)
	}

	concurrency := cfg.WarmConcurrency
	if concurrency <= 0 {
		concurrency = defaultWarmConcurrency
	}

	return &QuoteProvider{
		fetchers:        fetchers,
		cache:           cfg.Cache,
		snapshots:       cfg.Snapshots,
		ttl:             cfg.TTL,
		warmConcurrency: concurrency,
		logger:          logger.With(slog.String("component", "app.QuoteProvider")),
	}, nil
}

// GetQuote returns a non-empty quote for category.
// Only an unknown category fails, with an InvalidCategoryError and no outbound call.
func (p *QuoteProvider) GetQuote(ctx context.Context, category string) (domain.Quote, error) {
	c, err := domain.ParseCategory(category)
	if err != nil {
		return "", err
	}

	return p.fetchers[c].Fetch(ctx), nil
}

// Warm refreshes every cached category that is not already fresh.
// Failures are logged; Warm never fails.
func (p *QuoteProvider) Warm(ctx context.Context) {
	var targets []*SourceFetcher

	for _, category := range domain.Categories() {
		f := p.fetchers[category]
		if !f.Cached() {
			continue
		}

		if p.ttl > 0 && p.cache.IsFresh(category, p.ttl) {
			p.logger.DebugContext(ctx, "cache already fresh, skipping warm-up",
				slog.String("category", category.String()))
			continue
		}

		targets = append(targets, f)
	}

	if len(targets) == 0 {
		return
	}

	start := time.Now()
	results := mapLimit(ctx, p.warmConcurrency, targets, func(ctx context.Context, f *SourceFetcher) (int, error) {
		return f.Refresh(ctx)
	})

	for i, r := range results {
		category := targets[i].Category().String()
		if r.Err != nil {
			p.logger.WarnContext(ctx, "cache warm-up failed",
				slog.String("category", category),
				slog.Any("error", r.Err))
			continue
		}

		p.logger.InfoContext(ctx, "cache warmed",
			slog.String("category", category),
			slog.Int("quotes", r.Value))
	}

	p.logger.InfoContext(ctx, "cache warm-up finished", slog.Duration("duration", time.Since(start)))
}

// Restore loads persisted snapshots into the cache. Missing or unreadable
// snapshots are skipped.
func (p *QuoteProvider) Restore(ctx context.Context) {
	restorer, ok := p.cache.(cacheRestorer)
	if p.snapshots == nil || !ok {
		return
	}

	for _, category := range domain.Categories() {
		if !p.fetchers[category].Cached() {
			continue
		}

		entry, err := p.snapshots.Load(ctx, category)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to load cache snapshot",
				slog.String("category", category.String()),
				slog.Any("error", err))
			continue
		}

		if restorer.Restore(category, entry) {
			p.logger.InfoContext(ctx, "cache snapshot restored",
				slog.String("category", category.String()),
				slog.Int("quotes", len(entry.Quotes)),
				slog.Time("refreshed_at", entry.RefreshedAt))
		}
	}
}
