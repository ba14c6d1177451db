package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

// errorEnvelope matches the error bodies the downstreams send: OpenAI nests
// {"error":{"code","type","message"}} while others answer flat.
type errorEnvelope struct {
	Nested struct {
		Code    string `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// reason renders the envelope as "code: message", or "" when it says nothing.
func (e *errorEnvelope) reason() string {
	msg := firstNonEmpty(e.Nested.Message, e.Message)
	if msg == "" {
		return ""
	}

	if code := firstNonEmpty(e.Nested.Code, e.Code, e.Nested.Type); code != "" {
		return code + ": " + msg
	}

	return msg
}

// envelopeReason decodes an error body. Bodies that are not JSON, such as
// HTML block pages, yield "".
func envelopeReason(body io.Reader) string {
	if body == nil {
		return ""
	}

	var env errorEnvelope
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&env); err != nil {
		return ""
	}

	return env.reason()
}

var statusReasons = map[int]string{
	http.StatusUnauthorized:       "authentication required",
	http.StatusForbidden:          "access denied",
	http.StatusNotFound:           "resource not found",
	http.StatusTooManyRequests:    "rate limit exceeded",
	http.StatusServiceUnavailable: "service temporarily unavailable",
}

// MapHTTPError turns a failed call into a domain.UnavailableError. Callers
// only ever see the dependency as unavailable; the reason keeps the detail
// for logs. A 2xx response yields nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return domain.NewUnavailableError(serviceName, clientReason(clientErr, operation))
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	reason := envelopeReason(resp.Body)
	if reason == "" {
		reason = statusReasons[resp.StatusCode]
	}

	if reason == "" {
		reason = fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	}

	return domain.NewUnavailableError(serviceName, reason)
}

// MapDecodeError reports a response body that could not be decoded.
func MapDecodeError(serviceName, operation string, err error) error {
	return domain.NewUnavailableError(serviceName,
		fmt.Sprintf("unexpected %s response: %v", operation, err))
}

func clientReason(err error, operation string) string {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return "circuit breaker open during " + operation
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return "max retries exceeded during " + operation
	case errors.Is(err, context.DeadlineExceeded):
		return operation + " timed out"
	default:
		return fmt.Sprintf("%s failed: %v", operation, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
