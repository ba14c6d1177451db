package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
	"github.com/jsamuelsen/quote-dialects/internal/platform/logging"
)

// TraceIDKey is the gin context key holding an explicit trace ID.
const TraceIDKey = "trace_id"

// requestIDHeader is consulted when no trace ID was recorded.
const requestIDHeader = "X-Request-ID"

// FromDomainError maps a domain error to an HTTP status and error envelope.
// Unknown errors become 500 with a generic message so internals never leak.
func FromDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsInvalidCategory(err):
		return http.StatusBadRequest, NewErrorResponse(ErrorCodeInvalidCategory, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.WithDetails(map[string]string{validationErr.Field: validationErr.Message})
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			"service temporarily unavailable",
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// GetTraceID returns the trace ID for the request: an explicit context value
// first, then the active span, then the request ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetHeader(requestIDHeader)
}

// HandleError writes the envelope for err. Internal errors are logged with
// full details; the client only sees the generic message.
func HandleError(c *gin.Context, err error) {
	status, resp := FromDomainError(err)
	resp.WithTraceID(GetTraceID(c))

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "internal error",
			"error", err.Error(),
			"trace_id", resp.TraceID,
		)
	}

	c.JSON(status, resp)
}
