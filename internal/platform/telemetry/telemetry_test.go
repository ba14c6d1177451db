package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withTracer(t *testing.T) {
	t.Helper()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
}

func withMeterReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)

	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		_ = mp.Shutdown(context.Background())
	})

	return reader
}

func serve(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	return w
}

func TestNewDisabledInstallsPropagatorOnly(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())

	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}

func TestMetricsEchoesTraceID(t *testing.T) {
	withTracer(t)

	engine := gin.New()
	engine.Use(Tracing("quote-dialects"), Metrics())
	engine.GET("/api/quote", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(engine, "/api/quote")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(TraceIDHeader), 32)
}

func TestMetricsWithoutSpanSetsNoHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(Metrics())
	engine.GET("/api/quote", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Empty(t, serve(engine, "/api/quote").Header().Get(TraceIDHeader))
}

func TestMetricsRecordsRoutes(t *testing.T) {
	reader := withMeterReader(t)

	engine := gin.New()
	engine.Use(Metrics())
	engine.GET("/api/quote", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(engine, "/api/quote")
	serve(engine, "/api/quote")
	serve(engine, "/wp-admin/setup.php")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.server.request.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				counts[route.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{"/api/quote": 2, unmatchedRoute: 1}, counts)
}
