package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	meterName = "github.com/jsamuelsen/quote-dialects/internal/platform/telemetry"

	// TraceIDHeader carries the active trace ID back to the caller.
	TraceIDHeader = "X-Trace-ID"

	// unmatchedRoute labels requests that hit no registered route so
	// arbitrary paths do not become metric series.
	unmatchedRoute = "unmatched"
)

// serverInstruments are the HTTP server instruments.
type serverInstruments struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerInstruments(meter metric.Meter) (*serverInstruments, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of inbound HTTP requests"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Inbound HTTP requests by route and status"))
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Inbound HTTP requests being served"))
	if err != nil {
		return nil, err
	}

	return &serverInstruments{duration: duration, requests: requests, inFlight: inFlight}, nil
}

// Tracing starts a server span per request.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Metrics records request duration, count and concurrency, and echoes the
// trace ID in TraceIDHeader. Install it after Tracing.
func Metrics() gin.HandlerFunc {
	inst, err := newServerInstruments(otel.Meter(meterName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}

		if inst == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		base := metric.WithAttributes(
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
		)

		inst.inFlight.Add(ctx, 1, base)
		defer inst.inFlight.Add(ctx, -1, base)

		c.Next()

		done := metric.WithAttributes(
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", c.Writer.Status()),
		)
		inst.duration.Record(ctx, time.Since(start).Seconds(), done)
		inst.requests.Add(ctx, 1, done)
	}
}
