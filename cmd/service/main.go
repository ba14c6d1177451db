// Command service serves translated quotes over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/http"
	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-dialects/internal/bootstrap"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cfg)
	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("profile", profile),
	)

	tel, err := bootstrap.NewTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer logOnError(logger, "telemetry shutdown failed", func() error { return tel.Shutdown(ctx) })

	components, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("wiring components: %w", err)
	}
	defer logOnError(logger, "closing components failed", components.Close)

	if err := components.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("registering cache metrics: %w", err)
	}

	components.Start(ctx)

	health := handlers.NewHealthHandler(components.Health,
		handlers.NewBuildInfo(Version, Commit, BuildTime),
		handlers.WithCacheInspector(components.Cache, cfg.Quotes.CacheTTL))

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(logger, &cfg.App, health,
		handlers.NewQuoteHandler(components.Service)))

	select {
	case err := <-server.Start():
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

func logOnError(logger *slog.Logger, msg string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error(msg, slog.Any("error", err))
	}
}
