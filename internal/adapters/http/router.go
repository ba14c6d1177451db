package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
	"github.com/jsamuelsen/quote-dialects/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds every /api request. It leaves room for a full
// listing scrape plus one translation.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig collects what SetupRouter mounts. Nil handlers leave their
// routes out.
type RouterConfig struct {
	Logger        *slog.Logger
	AppConfig     *config.AppConfig
	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	Timeout       time.Duration
}

// SetupRouter installs the middleware chain and every route on engine.
// Middleware order: recovery, request ID, correlation ID, otelgin tracing,
// server metrics, request logging. API routes also get a request deadline;
// probes under /-/ do not.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.AppConfig.Name),
		telemetry.Metrics(),
		middleware.Logging(cfg.Logger),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound,
			dto.NewErrorResponse(dto.ErrorCodeNotFound, "route not found").WithTraceID(dto.GetTraceID(c)))
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.QuoteHandler == nil {
		return
	}

	api := engine.Group("/api")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	cfg.QuoteHandler.RegisterLegacyRoutes(api)
	cfg.QuoteHandler.RegisterQuoteRoutes(api.Group("/v1"))
}

// NewDefaultRouterConfig wires both handlers with DefaultRequestTimeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	health *handlers.HealthHandler,
	quotes *handlers.QuoteHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: health,
		QuoteHandler:  quotes,
		Timeout:       DefaultRequestTimeout,
	}
}
