// Package main is a command line client for the quote dialects service.
// It runs the same quote pipeline in-process, without the HTTP layer.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-dialects/internal/bootstrap"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
	"github.com/jsamuelsen/quote-dialects/internal/platform/logging"
)

type rootOptions struct {
	profile  string
	logLevel string
	stderr   io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:   "quotectl",
		Short: "Fetch quotes rewritten in a dialect",
		Long: `quotectl acquires a quote from one of the supported categories and
rewrites it in a dialect, falling back to a built-in quote when sources fail.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.stderr = cmd.ErrOrStderr()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.profile, "profile", envOr("APP_ENVIRONMENT", "local"), "configuration profile")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newGetCmd(opts),
		newCategoriesCmd(),
		newStylesCmd(),
	)

	return cmd
}

// components loads configuration and wires the quote pipeline.
func (o *rootOptions) components() (*bootstrap.Components, error) {
	cfg, err := config.Load(o.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Only errors are logged unless asked otherwise.
	cfg.Log.Level = "error"
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  "pretty",
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}, o.stderr)

	c, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wiring components: %w", err)
	}

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
