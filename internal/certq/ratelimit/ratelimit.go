// Package ratelimit paces outgoing check requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles requests across every check file in a run. The
// burst is one, so the first request proceeds immediately and later
// requests keep the configured spacing.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter allowing requestsPerSecond sustained requests.
// A zero or negative rate disables throttling.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}

	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
}

// Wait blocks until the next request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Limit reports the configured rate, 0 when throttling is disabled.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}

	return float64(limit)
}
