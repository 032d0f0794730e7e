package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{429, ErrorTypeRateLimit, true},
		{500, ErrorTypeServer, true},
		{503, ErrorTypeServer, true},
		{404, ErrorTypeClient, false},
		{401, ErrorTypeClient, false},
		{302, ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status)
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestClassifyRequestError(t *testing.T) {
	wrapped := fmt.Errorf("get: %w", context.DeadlineExceeded)

	if got := ClassifyRequestError(wrapped); got.Type != ErrorTypeTimeout {
		t.Errorf("Type = %q, want timeout", got.Type)
	}
	if got := ClassifyRequestError(errors.New("connection refused")); got.Type != ErrorTypeNetwork {
		t.Errorf("Type = %q, want network", got.Type)
	}
}

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FetchError
		want string
	}{
		{
			"status",
			ClassifyHTTPError(503).For("source:quandl:CURRFX/USDRUB"),
			"source:quandl:CURRFX/USDRUB: server error (status 503): server returned an error",
		},
		{
			"validation",
			NewValidationError("no rows in dataset"),
			"validation error: no rows in dataset",
		},
		{
			"cause",
			NewNetworkError(errors.New("dial tcp: refused")),
			"network error: request failed: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("fetch: %w", NewNetworkError(cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not find the cause")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Type != ErrorTypeNetwork {
		t.Errorf("errors.As() = %v, want network FetchError", fe)
	}
}
