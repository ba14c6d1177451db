package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/jsamuelsen/quote-dialects/internal/adapters/clients"
	"github.com/jsamuelsen/quote-dialects/internal/platform/logging"
)

// maxBodyBytes bounds how much of a downstream response is read.
const maxBodyBytes = 4 << 20

// BaseAdapter provides common functionality for ACL adapters.
// Embed this in service-specific adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
	logger      *slog.Logger
}

// NewBaseAdapter creates a new base adapter with the given client and service name.
// Panics if client is nil. Defaults logger to slog.Default() if nil.
func NewBaseAdapter(client *clients.Client, serviceName string, logger *slog.Logger) BaseAdapter {
	if client == nil {
		panic("acl: client is required for " + serviceName)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
		logger:      logger.With(slog.String("adapter", serviceName)),
	}
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET request and returns the response body (caller must close).
// Non-2xx responses and client failures are returned as domain errors.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	a.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", path),
		slog.String("operation", operation))

	resp, err := a.client.Get(ctx, path)

	return a.checkResponse(ctx, resp, err, operation)
}

// PostJSON marshals payload, POSTs it, and returns the response body (caller must close).
func (a *BaseAdapter) PostJSON(ctx context.Context, path string, payload any, operation string) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", operation, err)
	}

	a.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", path),
		slog.String("operation", operation))

	resp, err := a.client.Post(ctx, path, bytes.NewReader(body))

	return a.checkResponse(ctx, resp, err, operation)
}

// GetDocument fetches path and parses it as HTML.
func (a *BaseAdapter) GetDocument(ctx context.Context, path, operation string) (*goquery.Document, error) {
	body, err := a.Get(ctx, path, operation)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, MapDecodeError(a.serviceName, operation, err)
	}

	return doc, nil
}

func (a *BaseAdapter) checkResponse(ctx context.Context, resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	a.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("operation", operation),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		mapped := MapHTTPError(resp, nil, a.serviceName, operation)
		a.logger.WarnContext(ctx, "downstream returned error status",
			slog.String("operation", operation),
			slog.Int("status_code", resp.StatusCode),
			slog.Any("error", mapped))

		return nil, mapped
	}

	return resp.Body, nil
}

// DecodeResponse reads and decodes a JSON response body into the target type.
// Closes the body after reading.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, fmt.Errorf("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// BearerAuth returns a clients.Config AuthFunc that sets a bearer token.
// An empty token leaves requests untouched.
func BearerAuth(token string) func(*http.Request) {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}
