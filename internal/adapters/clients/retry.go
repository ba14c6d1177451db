package clients

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jsamuelsen/quote-dialects/internal/platform/config"
)

// defaultJitter spreads retries by ±25% when no jitter is configured.
const defaultJitter = 0.25

// backoff returns the wait before retry number attempt (1-based):
// InitialInterval * Multiplier^(attempt-1), capped at MaxInterval, with
// symmetric jitter.
func backoff(cfg config.RetryConfig, attempt int) time.Duration {
	d := float64(cfg.InitialInterval) * math.Pow(cfg.Multiplier, float64(attempt-1))
	d = math.Min(d, float64(cfg.MaxInterval))

	jitter := cfg.JitterFactor
	if jitter <= 0 {
		jitter = defaultJitter
	}

	d *= 1 + jitter*(2*rand.Float64()-1) //nolint:gosec // jitter needs no crypto randomness

	return time.Duration(d)
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether err is worth another attempt: 5xx answers and
// network failures are, caller cancellation is not.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
