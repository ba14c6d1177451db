// Package handlers holds the gin handlers of the quote API and its probes.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

// BuildInfo is injected at build time through ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills in the running Go version.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// CacheInspector exposes the scrape cache for the /-/cache probe.
type CacheInspector interface {
	Categories() []domain.Category
	Get(category domain.Category) (domain.CacheEntry, bool)
}

// HealthHandler serves the /-/ probe endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo

	cache    CacheInspector
	cacheTTL time.Duration
	now      func() time.Time
}

// HealthOption customizes a HealthHandler.
type HealthOption func(*HealthHandler)

// WithCacheInspector enables GET /-/cache. ttl decides which entries are fresh.
func WithCacheInspector(cache CacheInspector, ttl time.Duration) HealthOption {
	return func(h *HealthHandler) {
		h.cache = cache
		h.cacheTTL = ttl
	}
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{registry: registry, buildInfo: buildInfo, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Liveness answers 200 while the process runs. It never looks at downstreams.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness runs every registered check. Only an unhealthy result, meaning a
// critical downstream is failing, answers 503; degraded stays 200 because
// every quote category has a fallback.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{Status: string(result.Status), Checks: result.Checks})
}

// Build answers the build information.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// CacheState describes one cached category.
type CacheState struct {
	Quotes      int        `json:"quotes"`
	RefreshedAt *time.Time `json:"refreshedAt,omitempty"`
	AgeSeconds  float64    `json:"ageSeconds,omitempty"`
	Fresh       bool       `json:"fresh"`
}

// Cache reports the scrape cache per category.
func (h *HealthHandler) Cache(c *gin.Context) {
	now := h.now()
	states := make(map[domain.Category]CacheState)

	for _, category := range h.cache.Categories() {
		entry, ok := h.cache.Get(category)
		if !ok {
			states[category] = CacheState{}
			continue
		}

		refreshedAt := entry.RefreshedAt
		states[category] = CacheState{
			Quotes:      len(entry.Quotes),
			RefreshedAt: &refreshedAt,
			AgeSeconds:  now.Sub(refreshedAt).Seconds(),
			Fresh:       entry.IsFresh(now, h.cacheTTL),
		}
	}

	c.JSON(http.StatusOK, gin.H{"ttlSeconds": h.cacheTTL.Seconds(), "categories": states})
}

// RegisterHealthRoutesOnEngine mounts the probes under /-/: live, ready,
// build, metrics and, when a cache inspector is set, cache.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	probes := engine.Group("/-")
	probes.GET("/live", h.Liveness)
	probes.GET("/ready", h.Readiness)
	probes.GET("/build", h.Build)
	probes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.cache != nil {
		probes.GET("/cache", h.Cache)
	}
}
