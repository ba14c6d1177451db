package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/cache"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/mocks"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func probeRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	h.RegisterHealthRoutesOnEngine(r)

	return r
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.4.0", "9f3c2e1", "2026-10-01T08:00:00Z")

	assert.Equal(t, BuildInfo{
		Version:   "1.4.0",
		Commit:    "9f3c2e1",
		BuildTime: "2026-10-01T08:00:00Z",
		GoVersion: runtime.Version(),
	}, bi)
}

func TestLiveness(t *testing.T) {
	w := serve(probeRouter(NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{})), "/-/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		result     *ports.HealthResult
		wantStatus int
	}{
		{
			name: "healthy",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{"zenquotes": {Status: ports.HealthStatusHealthy}},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "degraded still serves traffic",
			result: &ports.HealthResult{
				Status: ports.HealthStatusDegraded,
				Checks: map[string]*ports.CheckResult{
					"goodreads": {Status: ports.HealthStatusDegraded, Message: "goodreads: circuit breaker open"},
					"redis":     {Status: ports.HealthStatusHealthy},
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unhealthy",
			result:     &ports.HealthResult{Status: ports.HealthStatusUnhealthy},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(tt.result).Once()

			w := serve(probeRouter(NewHealthHandler(registry, BuildInfo{})), "/-/ready")

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.result.Status), resp.Status)
			assert.Len(t, resp.Checks, len(tt.result.Checks))
		})
	}
}

func TestBuild(t *testing.T) {
	bi := NewBuildInfo("1.4.0", "9f3c2e1", "2026-10-01T08:00:00Z")

	w := serve(probeRouter(NewHealthHandler(mocks.NewMockHealthRegistry(t), bi)), "/-/build")

	require.Equal(t, http.StatusOK, w.Code)

	var got BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, bi, got)
}

func TestMetricsRoute(t *testing.T) {
	w := serve(probeRouter(NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{})), "/-/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCache(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-2 * time.Hour)

	scrapes := cache.NewScrapeCache(
		[]domain.Category{domain.CategoryLDS, domain.CategorySoftware},
		cache.WithClock(func() time.Time { return clock }),
	)
	scrapes.Put(domain.CategorySoftware, []domain.Quote{"Talk is cheap. Show me the code.", "Simplicity is prerequisite for reliability."})

	h := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, WithCacheInspector(scrapes, 24*time.Hour))
	h.now = func() time.Time { return now }

	w := serve(probeRouter(h), "/-/cache")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TTLSeconds float64                        `json:"ttlSeconds"`
		Categories map[domain.Category]CacheState `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.InDelta(t, 86400, resp.TTLSeconds, 0)
	require.Len(t, resp.Categories, 2)

	software := resp.Categories[domain.CategorySoftware]
	assert.Equal(t, 2, software.Quotes)
	assert.True(t, software.Fresh)
	assert.InDelta(t, 7200, software.AgeSeconds, 0)
	require.NotNil(t, software.RefreshedAt)
	assert.True(t, clock.Equal(*software.RefreshedAt))

	assert.Equal(t, CacheState{}, resp.Categories[domain.CategoryLDS])
}

func TestCacheRouteNeedsInspector(t *testing.T) {
	w := serve(probeRouter(NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{})), "/-/cache")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

var _ CacheInspector = (*cache.ScrapeCache)(nil)
