// Package bootstrap wires configuration into the adapters and application
// services shared by the HTTP service and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/cache"
	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-dialects/internal/app"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
	"github.com/jsamuelsen/quote-dialects/internal/platform/logging"
	"github.com/jsamuelsen/quote-dialects/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

// cachedCategories keep a scrape cache.
var cachedCategories = []domain.Category{domain.CategoryLDS, domain.CategorySoftware}

// Components holds the wired application graph.
type Components struct {
	Service  *app.QuoteService
	Provider *app.QuoteProvider
	Cache    *cache.ScrapeCache
	Health   *ports.DefaultHealthRegistry

	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// NewLogger builds the root logger from configuration and installs it as default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	return logger
}

// NewTelemetry installs trace propagation and, when enabled, OTLP export.
func NewTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Provider, error) {
	name := cfg.Telemetry.ServiceName
	if name == "" {
		name = cfg.App.Name
	}

	return telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  name,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
}

// Build creates every downstream client, quote source and application service.
// Every client is registered as a health check.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{
		Health: ports.NewHealthRegistry(),
		cfg:    cfg,
		logger: logger,
	}

	scrapeHeaders := map[string]string{"User-Agent": cfg.Quotes.UserAgent}

	zenClient, err := c.newClient(cfg.Services.Zen, nil, nil)
	if err != nil {
		return nil, err
	}

	bibleClient, err := c.newClient(cfg.Services.Bible, nil, nil)
	if err != nil {
		return nil, err
	}

	goodreadsClient, err := c.newClient(cfg.Services.Goodreads, scrapeHeaders, nil)
	if err != nil {
		return nil, err
	}

	highExistenceClient, err := c.newClient(cfg.Services.HighExistence, scrapeHeaders, nil)
	if err != nil {
		return nil, err
	}

	openAIClient, err := c.newClient(config.ServiceEndpointConfig{
		BaseURL: cfg.Services.OpenAI.BaseURL,
		Name:    cfg.Services.OpenAI.Name,
	}, nil, func(cc *clients.Config) {
		// Completions are not idempotent.
		cc.Retry.MaxAttempts = 1
		if cfg.Services.OpenAI.APIKey != "" {
			cc.AuthFunc = acl.BearerAuth(cfg.Services.OpenAI.APIKey)
		}
	})
	if err != nil {
		return nil, err
	}

	sources := map[domain.Category]ports.QuoteSource{
		domain.CategoryZen:   acl.NewZenClient(zenClient, logger),
		domain.CategoryBible: acl.NewBibleClient(bibleClient, logger),
		domain.CategoryLDS: acl.NewTagScraper(acl.TagScraperConfig{
			Client:    goodreadsClient,
			Tag:       cfg.Quotes.LDS.Tag,
			MaxPages:  cfg.Quotes.LDS.MaxPages,
			PageDelay: cfg.Quotes.LDS.PageDelay,
			Logger:    logger,
		}),
		domain.CategoryGeek: acl.NewStaticSource("geek", domain.GeekQuotes()),
		domain.CategorySoftware: acl.NewTagScraper(acl.TagScraperConfig{
			Client:    goodreadsClient,
			Tag:       cfg.Quotes.Software.Tag,
			MaxPages:  cfg.Quotes.Software.MaxPages,
			PageDelay: cfg.Quotes.Software.PageDelay,
			Logger:    logger,
		}),
		domain.CategoryPhilosophy: acl.NewPageScraper(acl.PageScraperConfig{
			Client: highExistenceClient,
			Name:   cfg.Services.HighExistence.Name,
			Path:   cfg.Services.HighExistence.Path,
			Logger: logger,
		}),
	}

	c.Cache = cache.NewScrapeCache(cachedCategories)

	var snapshots ports.CacheSnapshotStore
	if cfg.Cache.Redis.Enabled {
		store := cache.NewRedisSnapshotStore(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			UseTLS:   cfg.Cache.Redis.TLS,
			TTL:      cfg.Cache.Redis.SnapshotTTL,
		})
		c.closers = append(c.closers, store)

		if err := c.Health.Register(store); err != nil {
			return nil, fmt.Errorf("registering redis health check: %w", err)
		}

		snapshots = store
	}

	metrics, err := app.NewMetrics()
	if err != nil {
		logger.Warn("acquisition metrics unavailable", slog.Any("error", err))
		metrics = app.NoopMetrics()
	}

	c.Provider, err = app.NewQuoteProvider(app.QuoteProviderConfig{
		Sources:          sources,
		Cache:            c.Cache,
		CachedCategories: cachedCategories,
		TTL:              cfg.Quotes.CacheTTL,
		Snapshots:        snapshots,
		WarmConcurrency:  cfg.Quotes.WarmConcurrency,
		RefreshTimeout:   cfg.Quotes.RefreshTimeout,
		Metrics:          metrics,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating quote provider: %w", err)
	}

	if cfg.Services.OpenAI.APIKey == "" {
		logger.Warn("no OpenAI API key configured, quotes will be returned untranslated")
	}

	transformer := app.NewStyleTransformer(app.StyleTransformerConfig{
		Generator: acl.NewOpenAIClient(acl.OpenAIClientConfig{
			Client: openAIClient,
			APIKey: cfg.Services.OpenAI.APIKey,
			Model:  cfg.Services.OpenAI.Model,
			Logger: logger,
		}),
		MaxTokens:   cfg.Services.OpenAI.MaxTokens,
		Temperature: cfg.Services.OpenAI.Temperature,
		Metrics:     metrics,
		Logger:      logger,
	})

	c.Service = app.NewQuoteService(app.QuoteServiceConfig{
		Provider:    c.Provider,
		Transformer: transformer,
		Logger:      logger,
	})

	return c, nil
}

// newClient creates and health-registers a client for one downstream.
func (c *Components) newClient(
	ep config.ServiceEndpointConfig,
	headers map[string]string,
	customize func(*clients.Config),
) (*clients.Client, error) {
	cc := &clients.Config{
		BaseURL:     ep.BaseURL,
		ServiceName: ep.Name,
		Timeout:     c.cfg.Client.Timeout,
		Retry:       c.cfg.Client.Retry,
		Circuit:     c.cfg.Client.CircuitBreaker,
		Transport:   c.cfg.Client.Transport,
		Headers:     headers,
		Logger:      c.logger,
	}
	if customize != nil {
		customize(cc)
	}

	client, err := clients.New(cc)
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", ep.Name, err)
	}

	if err := c.Health.Register(client); err != nil {
		return nil, fmt.Errorf("registering %s health check: %w", ep.Name, err)
	}

	return client, nil
}

// Start restores persisted cache snapshots, then warms stale cached
// categories in the background when configured.
func (c *Components) Start(ctx context.Context) {
	c.Provider.Restore(ctx)

	if c.cfg.Quotes.WarmOnStart {
		go c.Provider.Warm(context.WithoutCancel(ctx))
	}
}

// RegisterMetrics exposes the scrape cache state on reg.
func (c *Components) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(cache.NewCollector(c.Cache))
}

// Close releases connections held by the components.
func (c *Components) Close() error {
	var errs []error

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
