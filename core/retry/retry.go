// Package retry provides the single retry policy shared by the PDF
// download, web render, and validation call sites. Max attempts and
// backoff are parameterized per call site; what counts as retryable
// is decided by the operation returning an error.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy describes a bounded retry loop with fixed backoff.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Default is the fetch-layer policy: 3 attempts, 2s apart.
var Default = Policy{MaxAttempts: 3, Backoff: 2 * time.Second}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned after exhaustion.
func (p Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		slog.Warn("retrying", "op", name, "attempt", i, "err", err)
		select {
		case <-time.After(p.Backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
