// Package clients is the resilient HTTP client every downstream adapter
// (quote APIs, scraped sites, OpenAI) is built on.
package clients

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen means the downstream failed repeatedly and calls are
	// short-circuited until the cooldown elapses.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is used.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError reports a 5xx answer from a downstream.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}
