package acl

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
)

// newTestClient serves handler and returns a single-attempt client for it.
// Tests that exercise retries or auth adjust the config through customize.
func newTestClient(t *testing.T, handler http.HandlerFunc, customize ...func(*clients.Config)) *clients.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &clients.Config{
		BaseURL:     srv.URL,
		ServiceName: "downstream",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Transport: config.TransportConfig{
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     time.Second,
		},
		Logger: discardLogger(),
	}

	for _, fn := range customize {
		fn(cfg)
	}

	client, err := clients.New(cfg)
	require.NoError(t, err)

	return client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
