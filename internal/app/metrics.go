package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// instrumentationName is used for the OpenTelemetry meter.
const instrumentationName = "github.com/jsamuelsen/quote-dialects/internal/app"

// Outcome labels how a quote was obtained.
type Outcome string

// Acquisition outcomes.
const (
	OutcomeCache    Outcome = "cache"
	OutcomeLive     Outcome = "live"
	OutcomeStale    Outcome = "stale"
	OutcomeFallback Outcome = "fallback"
)

// Rewrite outcomes.
const (
	OutcomeRewritten Outcome = "rewritten"
	OutcomeDegraded  Outcome = "degraded"
)

// Metrics records application-level counters.
type Metrics struct {
	acquisitions metric.Int64Counter
	rewrites     metric.Int64Counter
}

// NewMetrics creates the application counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(instrumentationName))
}

// NoopMetrics returns counters that record nothing.
func NoopMetrics() *Metrics {
	m, _ := newMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	acquisitions, err := meter.Int64Counter(
		"quotes.acquisition.total",
		metric.WithDescription("Quote acquisitions by category and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating acquisition counter: %w", err)
	}

	rewrites, err := meter.Int64Counter(
		"quotes.rewrite.total",
		metric.WithDescription("Style rewrites by style and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rewrite counter: %w", err)
	}

	return &Metrics{acquisitions: acquisitions, rewrites: rewrites}, nil
}

func (m *Metrics) recordAcquisition(ctx context.Context, category domain.Category, outcome Outcome) {
	m.acquisitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category.String()),
		attribute.String("outcome", string(outcome)),
	))
}

func (m *Metrics) recordRewrite(ctx context.Context, style domain.Style, outcome Outcome) {
	m.rewrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("style", style.String()),
		attribute.String("outcome", string(outcome)),
	))
}
