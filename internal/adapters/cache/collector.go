package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports scrape cache state to Prometheus.
type Collector struct {
	cache   *ScrapeCache
	entries *prometheus.Desc
	age     *prometheus.Desc
}

// NewCollector returns a collector reading c at scrape time.
func NewCollector(c *ScrapeCache) *Collector {
	return &Collector{
		cache: c,
		entries: prometheus.NewDesc(
			"quote_cache_entries",
			"Number of quotes held in the scrape cache.",
			[]string{"category"}, nil,
		),
		age: prometheus.NewDesc(
			"quote_cache_age_seconds",
			"Seconds since the scrape cache entry was refreshed.",
			[]string{"category"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.age
}

// Collect implements prometheus.Collector. Categories never filled report zero
// entries and no age.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, category := range c.cache.Categories() {
		entry, ok := c.cache.Get(category)

		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue,
			float64(len(entry.Quotes)), category.String())

		if !ok {
			continue
		}

		if age, ok := c.cache.Age(category); ok {
			ch <- prometheus.MustNewConstMetric(c.age, prometheus.GaugeValue,
				age.Seconds(), category.String())
		}
	}
}
