package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/ports"
)

const (
	// DefaultMaxTokens bounds the rewrite length.
	DefaultMaxTokens = 150

	// DefaultTemperature is the rewrite sampling temperature.
	DefaultTemperature = 0.8
)

var personas = map[domain.Style]string{
	domain.StyleGenZ: "You are a translator that converts quotes into Gen Z brain-rot dialect. " +
		"Use modern slang, emojis, and Gen Z expressions while maintaining the core meaning of the quote.",
	domain.StylePirate: "You are a translator that converts quotes into Pirate speak. " +
		"Use classic pirate slang and expressions while maintaining the core meaning of the quote.",
	domain.StyleLeetSpeak: "You are a translator that converts quotes into 2000s L33t Speak. " +
		"Use numbers and symbols to replace letters and use classic l33t speak while maintaining the core meaning of the quote.",
	domain.StyleMedieval: "You are a translator that converts quotes into Ye Olde Medieval English. " +
		"Use archaic words and sentence structures to make it sound like it's from the Middle Ages, " +
		"while maintaining the core meaning of the quote.",
}

// Persona returns the system instruction for style.
// Unknown styles get the default style's persona.
func Persona(style domain.Style) string {
	if p, ok := personas[style]; ok {
		return p
	}

	return personas[domain.DefaultStyle]
}

// StyleTransformerConfig contains configuration for the style transformer.
type StyleTransformerConfig struct {
	Generator   ports.TextGenerator
	MaxTokens   int
	Temperature float64
	Metrics     *Metrics
	Logger      *slog.Logger
}

// StyleTransformer rewrites quotes in a dialect.
type StyleTransformer struct {
	generator   ports.TextGenerator
	maxTokens   int
	temperature float64
	metrics     *Metrics
	logger      *slog.Logger
}

// NewStyleTransformer creates a transformer. Panics if Generator is nil.
func NewStyleTransformer(cfg StyleTransformerConfig) *StyleTransformer {
	if cfg.Generator == nil {
		panic("StyleTransformer: Generator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics()
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &StyleTransformer{
		generator:   cfg.Generator,
		maxTokens:   maxTokens,
		temperature: temperature,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "app.StyleTransformer")),
	}
}

// Rewrite returns quote rewritten in style. Any generator failure or an
// empty completion returns quote unchanged.
func (t *StyleTransformer) Rewrite(ctx context.Context, quote domain.Quote, style domain.Style) string {
	if !style.Valid() {
		style = domain.DefaultStyle
	}

	text, err := t.generator.Complete(ctx, ports.CompletionRequest{
		System:      Persona(style),
		User:        `Translate this quote: "` + quote.String() + `"`,
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	})

	text = strings.TrimSpace(text)

	switch {
	case err != nil:
		t.logger.WarnContext(ctx, "rewrite failed, returning original",
			slog.String("style", style.String()),
			slog.Any("error", err))
	case text == "":
		t.logger.WarnContext(ctx, "empty rewrite, returning original",
			slog.String("style", style.String()))
	default:
		t.metrics.recordRewrite(ctx, style, OutcomeRewritten)
		return text
	}

	t.metrics.recordRewrite(ctx, style, OutcomeDegraded)

	return quote.String()
}
