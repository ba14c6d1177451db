package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is. Adapters map them to transport status codes.
var (
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCategory also matches ErrValidation.
	ErrInvalidCategory = errors.New("invalid quote category")

	ErrUnavailable = errors.New("unavailable")

	// ErrNoQuotes means a source answered without a usable quote. It also
	// matches ErrUnavailable.
	ErrNoQuotes = errors.New("no usable quotes")
)

// ValidationError names the input that broke a rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError reports that field broke a rule.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidCategoryError rejects a quote type outside the closed set. It is the
// only acquisition error that reaches callers.
type InvalidCategoryError struct {
	Value string
}

func (e *InvalidCategoryError) Error() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	return fmt.Sprintf("invalid quote type %q (expected one of: %s)", e.Value, strings.Join(names, ", "))
}

func (e *InvalidCategoryError) Unwrap() []error {
	return []error{ErrInvalidCategory, ErrValidation}
}

// NewInvalidCategoryError rejects value as a quote type.
func NewInvalidCategoryError(value string) error {
	return &InvalidCategoryError{Value: value}
}

// UnavailableError reports a downstream that could not serve a request.
// Reason is for logs only.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}

	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError reports service as unavailable.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// NoQuotesError reports a source whose answer held no usable quote, such as
// an empty listing page or a blank JSON field.
type NoQuotesError struct {
	Source string
	Reason string
}

func (e *NoQuotesError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("source %q returned no usable quotes", e.Source)
	}

	return fmt.Sprintf("source %q returned no usable quotes: %s", e.Source, e.Reason)
}

func (e *NoQuotesError) Unwrap() []error {
	return []error{ErrNoQuotes, ErrUnavailable}
}

// NewNoQuotesError reports that source yielded nothing usable.
func NewNoQuotesError(source, reason string) error {
	return &NoQuotesError{Source: source, Reason: reason}
}

func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsInvalidCategory(err error) bool { return errors.Is(err, ErrInvalidCategory) }
func IsUnavailable(err error) bool     { return errors.Is(err, ErrUnavailable) }
func IsNoQuotes(err error) bool        { return errors.Is(err, ErrNoQuotes) }
