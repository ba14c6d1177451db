package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

func TestCollector_ExportsEntriesAndAge(t *testing.T) {
	clock := newFakeClock()
	c := NewScrapeCache(cached, WithClock(clock.Now))
	c.Put(domain.CategoryLDS, []domain.Quote{"a", "b", "c"})
	clock.Advance(90 * time.Second)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(c)))

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]map[string]float64{}
	for _, mf := range families {
		values := map[string]float64{}
		for _, m := range mf.GetMetric() {
			require.Len(t, m.GetLabel(), 1)
			values[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
		}
		got[mf.GetName()] = values
	}

	assert.Equal(t, map[string]float64{"lds": 3, "software": 0}, got["quote_cache_entries"])
	assert.Equal(t, map[string]float64{"lds": 90}, got["quote_cache_age_seconds"])
}
