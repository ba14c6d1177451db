package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
	"github.com/jsamuelsen/quote-dialects/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-dialects/internal/adapters/clients"

	defaultTimeout = 30 * time.Second
)

// Config configures a Client for one downstream.
type Config struct {
	BaseURL     string
	ServiceName string

	// Timeout bounds a single attempt, not the whole call.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// Headers are set on every attempt, e.g. the scraper User-Agent.
	Headers map[string]string

	// Critical downstreams make the service unready while their circuit
	// is open; the others only degrade it.
	Critical bool

	// AuthFunc decorates every attempt, retries included.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client calls one downstream with retries, a circuit breaker, OTel spans
// and metrics, and request ID propagation. It doubles as the downstream's
// health check.
type Client struct {
	http    *http.Client
	baseURL string
	name    string
	cfg     *Config
	logger  *slog.Logger
	breaker *Breaker
	tracer  trace.Tracer

	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("downstream", cfg.ServiceName))

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of downstream HTTP calls including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	requests, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Downstream HTTP calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        orDefault(cfg.Transport.MaxIdleConns, config.DefaultTransportMaxIdleConns),
				MaxIdleConnsPerHost: orDefault(cfg.Transport.MaxIdleConnsPerHost, config.DefaultTransportMaxIdleConnsPerHost),
				IdleConnTimeout:     orDefault(cfg.Transport.IdleConnTimeout, config.DefaultTransportIdleConnTimeout),
			},
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		name:    cfg.ServiceName,
		cfg:     cfg,
		logger:  logger,
		breaker: NewBreaker(cfg.Circuit, func(from, to State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}),
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		requests: requests,
	}, nil
}

// Get sends a GET to path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Post sends a JSON body to path. body must be rewindable (bytes.Reader,
// strings.Reader) for retries to resend it.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Do sends req. A 5xx answer or a network failure is retried with
// exponential backoff and counts against the circuit breaker once all
// attempts fail. Any other response, 4xx included, is returned to the caller.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := c.logger
	if ctxLogger := logging.FromContextOr(ctx, nil); ctxLogger != nil {
		logger = ctxLogger.With(slog.String("downstream", c.name))
	}

	logger = logger.With(
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if err := c.breaker.Allow(); err != nil {
		c.observe(ctx, req.Method, "circuit_open", 0, start)
		logger.Warn("request short-circuited")

		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.name),
		),
	)
	defer span.End()

	c.decorate(ctx, req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, attempts, err := c.send(ctx, req, logger)

	if errors.Is(err, context.Canceled) {
		c.breaker.Release()
	} else {
		c.breaker.Record(err == nil)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.observe(ctx, req.Method, "error", 0, start)
		logger.Error("downstream request failed",
			slog.Int("attempts", attempts),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		if attempts == c.cfg.Retry.MaxAttempts && retryable(err) {
			return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
		}

		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
	}

	c.observe(ctx, req.Method, strconv.Itoa(resp.StatusCode/100)+"xx", resp.StatusCode, start)
	logger.Debug("downstream request completed",
		slog.Int("status", resp.StatusCode),
		slog.Int("attempts", attempts),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// send runs the attempts and returns how many were made.
func (c *Client) send(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, int, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := backoff(c.cfg.Retry, attempt-1)
			logger.Debug("retrying request", slog.Int("attempt", attempt), slog.Duration("backoff", wait))

			if err := sleep(ctx, wait); err != nil {
				return nil, attempt - 1, err
			}

			if err := rewind(req); err != nil {
				return nil, attempt - 1, err
			}

			if c.cfg.AuthFunc != nil {
				c.cfg.AuthFunc(req)
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err == nil && resp.StatusCode >= http.StatusInternalServerError {
			_ = resp.Body.Close()
			err = &StatusError{StatusCode: resp.StatusCode}
		}

		if err == nil {
			return resp, attempt, nil
		}

		lastErr = err
		if !retryable(err) {
			return nil, attempt, err
		}

		logger.Debug("attempt failed", slog.Int("attempt", attempt), slog.Any("error", err))
	}

	return nil, c.cfg.Retry.MaxAttempts, lastErr
}

// rewind resets the request body before a retry.
func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}

	req.Body = body

	return nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

func (c *Client) observe(ctx context.Context, method, result string, status int, start time.Time) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.name),
		attribute.String("result", result),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, time.Since(start).Seconds(), set)
	c.requests.Add(ctx, 1, set)
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// CircuitState returns the breaker state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return c.name
}

// Check implements ports.HealthChecker from the breaker state alone; it
// never calls the downstream.
func (c *Client) Check(context.Context) error {
	if c.breaker.State() == StateOpen {
		return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
	}

	return nil
}

// Critical implements ports.CriticalityReporter.
func (c *Client) Critical() bool {
	return c.cfg.Critical
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}

	return v
}
