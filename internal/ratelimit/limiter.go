package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// API identifies a dataset provider sharing one request budget
type API string

const (
	// APIQuandl represents the Quandl datasets API
	APIQuandl API = "quandl"
	// APIAlphaVantage represents the Alpha Vantage API
	APIAlphaVantage API = "alphavantage"
)

// DefaultLimits are conservative request rates for the free tiers.
// Alpha Vantage allows 5 requests per minute, one every 12 seconds.
var DefaultLimits = map[API]rate.Limit{
	APIQuandl:       rate.Limit(2),
	APIAlphaVantage: rate.Limit(1.0 / 12.0),
}

// Limiter paces requests per provider. A nil *Limiter never blocks.
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New returns a limiter with the given per-second rates and a burst of 1.
func New(limits map[API]rate.Limit) *Limiter {
	l := &Limiter{limiters: make(map[API]*rate.Limiter, len(limits))}
	for api, r := range limits {
		l.limiters[api] = rate.NewLimiter(r, 1)
	}
	return l
}

// Unlimited returns a limiter that lets every request through.
func Unlimited() *Limiter {
	return New(map[API]rate.Limit{
		APIQuandl:       rate.Inf,
		APIAlphaVantage: rate.Inf,
	})
}

// SetLimit changes the rate for api, adding a limiter if none exists.
func (l *Limiter) SetLimit(api API, r rate.Limit) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[api]; ok {
		lim.SetLimit(r)
		return
	}
	l.limiters[api] = rate.NewLimiter(r, 1)
}

// Wait blocks until the limiter permits a request to api.
// It returns an error if ctx is done first.
func (l *Limiter) Wait(ctx context.Context, api API) error {
	limiter := l.get(api)
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// Allow reports whether a request to api may happen now
func (l *Limiter) Allow(api API) bool {
	limiter := l.get(api)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (l *Limiter) get(api API) *rate.Limiter {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limiters[api]
}
