package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of a failed dataset fetch
type ErrorType string

const (
	// ErrorTypeNetwork indicates a connection-level failure (refused, DNS, reset)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the provider throttled the request (HTTP 429 or an API note)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates an HTTP 5xx response
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates an HTTP 4xx response other than 429
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeValidation indicates the body was received but is not a usable dataset
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimeout indicates the context expired or was cancelled
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown indicates anything else
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError is the structured error every source returns.
// Retryable is advisory; nothing in this module retries.
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Source     string
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	prefix := string(e.Type) + " error"
	if e.Source != "" {
		prefix = e.Source + ": " + prefix
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", prefix, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// For attaches the source key to the error and returns it.
func (e *FetchError) For(source string) *FetchError {
	e.Source = source
	return e
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "request failed",
		Cause:     cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(statusCode int, message string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// ClassifyRequestError maps a transport error to a timeout or network error.
func ClassifyRequestError(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}

// ClassifyHTTPError classifies a non-success HTTP status code
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewRateLimitError(statusCode, "rate limit exceeded")
	case statusCode >= 500:
		return &FetchError{
			Type:       ErrorTypeServer,
			Retryable:  true,
			StatusCode: statusCode,
			Message:    "server returned an error",
		}
	case statusCode >= 400:
		return &FetchError{
			Type:       ErrorTypeClient,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("client error: HTTP %d", statusCode),
		}
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}
