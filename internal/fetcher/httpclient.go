package fetcher

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

const defaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when ClientOptions.UserAgent is empty.
const DefaultUserAgent = "oilfx/1.0"

// ClientOptions configures NewHTTPClient. Zero values use the defaults.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
}

// NewHTTPClient creates the HTTP client shared by the dataset sources.
// Each request is attempted exactly once; failures are returned to the caller
// as FetchError values.
func NewHTTPClient(baseURL string, opts ClientOptions) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", ua).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{opts.Logger})
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error().Str("component", "http").Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn().Str("component", "http").Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug().Str("component", "http").Msg(fmt.Sprintf(format, v...))
}
