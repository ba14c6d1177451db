// Package cache provides the scrape cache and its persistence adapters.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// ScrapeCache implements ports.ScrapeCache with one atomic slot per category.
//
// The slot map is built once in NewScrapeCache and never modified afterwards,
// so lookups need no lock. Writers swap whole entries; readers see either the
// previous or the next entry, never a mix.
type ScrapeCache struct {
	slots map[domain.Category]*atomic.Pointer[domain.CacheEntry]
	now   func() time.Time
}

// Option configures a ScrapeCache.
type Option func(*ScrapeCache)

// WithClock overrides the clock used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(c *ScrapeCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewScrapeCache creates an empty cache for the given categories.
// Operations on any other category are ignored.
func NewScrapeCache(categories []domain.Category, opts ...Option) *ScrapeCache {
	c := &ScrapeCache{
		slots: make(map[domain.Category]*atomic.Pointer[domain.CacheEntry], len(categories)),
		now:   time.Now,
	}

	for _, category := range categories {
		c.slots[category] = &atomic.Pointer[domain.CacheEntry]{}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get implements ports.ScrapeCache. The second result is false when the
// category is not cached or nothing has been stored yet.
func (c *ScrapeCache) Get(category domain.Category) (domain.CacheEntry, bool) {
	slot, ok := c.slots[category]
	if !ok {
		return domain.CacheEntry{}, false
	}

	entry := slot.Load()
	if entry.IsEmpty() {
		return domain.CacheEntry{}, false
	}

	return *entry, true
}

// Put implements ports.ScrapeCache. Zero quotes leave the entry untouched.
func (c *ScrapeCache) Put(category domain.Category, quotes []domain.Quote) {
	slot, ok := c.slots[category]
	if !ok || len(quotes) == 0 {
		return
	}

	list := make([]domain.Quote, len(quotes))
	copy(list, quotes)

	slot.Store(&domain.CacheEntry{Quotes: list, RefreshedAt: c.now()})
}

// Restore installs a previously persisted entry without restamping it.
// It reports whether the entry was installed.
func (c *ScrapeCache) Restore(category domain.Category, entry *domain.CacheEntry) bool {
	slot, ok := c.slots[category]
	if !ok || entry.IsEmpty() {
		return false
	}

	list := make([]domain.Quote, len(entry.Quotes))
	copy(list, entry.Quotes)

	slot.Store(&domain.CacheEntry{Quotes: list, RefreshedAt: entry.RefreshedAt})

	return true
}

// IsFresh implements ports.ScrapeCache.
func (c *ScrapeCache) IsFresh(category domain.Category, ttl time.Duration) bool {
	slot, ok := c.slots[category]
	if !ok {
		return false
	}

	return slot.Load().IsFresh(c.now(), ttl)
}

// Categories returns the cached categories.
func (c *ScrapeCache) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(c.slots))
	for _, category := range domain.Categories() {
		if _, ok := c.slots[category]; ok {
			out = append(out, category)
		}
	}

	return out
}

// Age returns how long ago the category was refreshed.
func (c *ScrapeCache) Age(category domain.Category) (time.Duration, bool) {
	entry, ok := c.Get(category)
	if !ok {
		return 0, false
	}

	return c.now().Sub(entry.RefreshedAt), true
}
