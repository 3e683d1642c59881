// Package ratelimit paces requests to the source site.
package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging. A nil Limiter, or
// one created with a non-positive rate, never blocks.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a limiter allowing perSecond requests per second. Fractional
// rates are allowed, 0.5 means one request every two seconds. The burst
// is the rate rounded up, at least one.
func New(name string, perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{name: name}
	}

	burst := int(math.Ceil(perSecond))
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		name:    name,
	}
}

// Enabled reports whether the limiter actually paces requests.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Wait blocks until the rate limiter allows a request to proceed.
// Returns an error if the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return ctx.Err()
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Name returns the name of this rate limiter.
func (l *Limiter) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}
