// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (acquire a quote, then rewrite it)
//   - Apply degradation policy (stale cache, static fallbacks, original text)
//   - Handle cross-cutting concerns (logging, acquisition metrics)
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters/http)
//   - Payload parsing and scraping (that's adapters/clients/acl)
//   - Core domain rules (that's the domain layer)
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// QuoteService orchestrates the translate use case.
type QuoteService struct {
	provider    *QuoteProvider
	transformer *StyleTransformer
	logger      *slog.Logger
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Provider    *QuoteProvider
	Transformer *StyleTransformer
	Logger      *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if Provider or Transformer is nil. Defaults logger to slog.Default() if nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Provider == nil {
		panic("QuoteService: Provider is required")
	}

	if cfg.Transformer == nil {
		panic("QuoteService: Transformer is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		provider:    cfg.Provider,
		transformer: cfg.Transformer,
		logger:      logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Translate acquires a quote for category and rewrites it in style.
// An unknown style falls back to the default; only an unknown category fails.
func (s *QuoteService) Translate(ctx context.Context, category, style string) (*domain.Translation, error) {
	quote, err := s.provider.GetQuote(ctx, category)
	if err != nil {
		s.logger.InfoContext(ctx, "rejected quote request",
			slog.String("category", category),
			slog.Any("error", err))
		return nil, err
	}

	st := domain.ParseStyle(style)
	if raw := strings.TrimSpace(style); raw != "" && raw != st.String() {
		s.logger.DebugContext(ctx, "unknown style, using default",
			slog.String("requested", raw),
			slog.String("style", st.String()))
	}

	translated := s.transformer.Rewrite(ctx, quote, st)

	s.logger.InfoContext(ctx, "quote translated",
		slog.String("category", category),
		slog.String("style", st.String()))

	return &domain.Translation{
		Original:   quote,
		Translated: translated,
		Category:   domain.Category(strings.TrimSpace(category)),
		Style:      st,
	}, nil
}

// Categories lists the supported categories.
func (s *QuoteService) Categories() []domain.Category {
	return domain.Categories()
}

// Styles lists the supported styles.
func (s *QuoteService) Styles() []domain.Style {
	return domain.Styles()
}
