// Package pace models the politeness delays between requests as token
// buckets rather than inline sleeps, so pacing is testable and tunable.
// The pipeline is strictly sequential; these limiters only space out
// consecutive requests against the origin server.
package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out consecutive operations at a fixed interval.
type Pacer struct {
	limiter *rate.Limiter
}

// New creates a Pacer allowing one operation per interval, with the
// first operation passing immediately. A non-positive interval yields
// an unlimited Pacer.
func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next operation is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
