package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-dialects/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)

	return c, w
}

func TestErrorResponseEnvelope(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeValidation, "request validation failed").
		WithDetails(map[string]string{"type": "must be at most 32 characters"}).
		WithTraceID("trace-1")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "request validation failed",
			"details": {"type": "must be at most 32 characters"}
		},
		"traceId": "trace-1"
	}`, string(raw))
}

func TestErrorResponseOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrorCodeInvalidCategory, "invalid quote type").WithDetails(map[string]string{}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":{"code":"INVALID_CATEGORY","message":"invalid quote type"}}`, string(raw))
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeInvalidCategory: http.StatusBadRequest,
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeBadRequest:      http.StatusBadRequest,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeTimeout:         http.StatusGatewayTimeout,
		ErrorCodeInternal:        http.StatusInternalServerError,
		"UNKNOWN_CODE":           http.StatusInternalServerError,
	}

	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, want, HTTPStatusFromCode(code))
		})
	}
}

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "invalid category",
			err:         domain.NewInvalidCategoryError("poetry"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeInvalidCategory,
			wantMessage: `"poetry"`,
		},
		{
			name:        "wrapped invalid category",
			err:         fmt.Errorf("translate: %w", domain.NewInvalidCategoryError("ZEN")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeInvalidCategory,
			wantMessage: `"ZEN"`,
		},
		{
			name:        "validation",
			err:         domain.NewValidationError("dialect", "too long"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "dialect",
		},
		{
			name:        "unavailable hides the downstream reason",
			err:         domain.NewUnavailableError("openai", "api key sk-123 rejected"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "service temporarily unavailable",
		},
		{
			name:        "no quotes counts as unavailable",
			err:         domain.NewNoQuotesError("goodreads-lds", "empty listing"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "service temporarily unavailable",
		},
		{
			name:        "unknown error",
			err:         errors.New("nil map write"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMessage)
		})
	}

	t.Run("nil error", func(t *testing.T) {
		status, resp := FromDomainError(nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, resp)
	})

	t.Run("validation error carries field details", func(t *testing.T) {
		_, resp := FromDomainError(domain.NewValidationError("dialect", "too long"))
		assert.Equal(t, map[string]string{"dialect": "too long"}, resp.Error.Details)
	})

	t.Run("unavailable error never leaks the reason", func(t *testing.T) {
		_, resp := FromDomainError(domain.NewUnavailableError("openai", "api key sk-123 rejected"))
		assert.NotContains(t, resp.Error.Message, "sk-123")
	})
}

func TestGetTraceID(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0xf7, 0x65, 0x19},
		SpanID:     trace.SpanID{0x01},
		TraceFlags: trace.FlagsSampled,
	})

	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{
			name:  "explicit context value",
			setup: func(c *gin.Context) { c.Set(TraceIDKey, "ctx-trace") },
			want:  "ctx-trace",
		},
		{
			name: "context value wins over span and header",
			setup: func(c *gin.Context) {
				c.Set(TraceIDKey, "ctx-trace")
				c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), spanCtx))
				c.Request.Header.Set("X-Request-ID", "req-1")
			},
			want: "ctx-trace",
		},
		{
			name: "active span",
			setup: func(c *gin.Context) {
				c.Request = c.Request.WithContext(trace.ContextWithSpanContext(context.Background(), spanCtx))
				c.Request.Header.Set("X-Request-ID", "req-1")
			},
			want: spanCtx.TraceID().String(),
		},
		{
			name:  "request ID header",
			setup: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "req-1") },
			want:  "req-1",
		},
		{
			name:  "non-string context value",
			setup: func(c *gin.Context) { c.Set(TraceIDKey, 42) },
			want:  "",
		},
		{
			name:  "nothing recorded",
			setup: func(*gin.Context) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("/api/quote")
			tt.setup(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid category", domain.NewInvalidCategoryError("poetry"), http.StatusBadRequest, ErrorCodeInvalidCategory},
		{"unavailable", domain.NewUnavailableError("zenquotes", "timeout"), http.StatusServiceUnavailable, ErrorCodeUnavailable},
		{"internal", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext("/api/quote")
			c.Set(TraceIDKey, "trace-"+tt.wantCode)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "trace-"+tt.wantCode, resp.TraceID)
		})
	}
}

type quoteQuery struct {
	Type    string `form:"type" validate:"max=32"`
	Dialect string `form:"dialect" json:"dialect" validate:"max=32"`
	Pages   int    `form:"pages" validate:"omitempty,min=1,max=10"`
	Mode    string `form:"mode" validate:"omitempty,oneof=fast slow"`
}

func TestBindQueryAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantErr     error
		wantDetails map[string]string
	}{
		{
			name:  "valid",
			query: "?type=zen&dialect=pirate&pages=3&mode=fast",
		},
		{
			name:  "empty query",
			query: "",
		},
		{
			name:    "oversized string",
			query:   "?type=" + strings.Repeat("z", 33),
			wantErr: ErrValidation,
			wantDetails: map[string]string{
				"type": "must be at most 32 characters",
			},
		},
		{
			name:    "number out of range",
			query:   "?pages=11",
			wantErr: ErrValidation,
			wantDetails: map[string]string{
				"pages": "must be at most 10",
			},
		},
		{
			name:    "several failures",
			query:   "?pages=0&mode=turbo&dialect=" + strings.Repeat("d", 40),
			wantErr: ErrValidation,
			wantDetails: map[string]string{
				"dialect": "must be at most 32 characters",
				"mode":    "must be one of: fast slow",
			},
		},
		{
			name:    "unparseable number",
			query:   "?pages=many",
			wantErr: ErrBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("/api/quote" + tt.query)

			var q quoteQuery
			err := BindQueryAndValidate(c, &q)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			details := ValidationErrors(err)
			for field, msg := range tt.wantDetails {
				assert.Equal(t, msg, details[field], field)
			}
		})
	}
}

func TestValidationErrorsWithoutFieldErrors(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("plain")))
	assert.Empty(t, ValidationErrors(nil))
}

func TestValidatorIsShared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}
