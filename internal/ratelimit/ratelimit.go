// Package ratelimit paces calls to rate-limited upstream providers and
// backs the HTTP rate-limit middleware.
//
// Two token buckets are provided: Local, held in process memory, and Bucket,
// stored in Redis so every instance of the service draws from the same
// budget.  Shared turns a Bucket into a blocking Limiter that degrades to a
// Local limiter while Redis is unreachable.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the caller may perform one more request.  Wait
// returns ctx.Err() if ctx ends first, and ErrWouldExceedDeadline without
// blocking when the next token is due after the ctx deadline.
type Limiter interface {
	Wait(ctx context.Context) error
}

// ErrWouldExceedDeadline matches context.DeadlineExceeded under errors.Is.
var ErrWouldExceedDeadline = fmt.Errorf("ratelimit: no token before deadline: %w", context.DeadlineExceeded)

// Local is an in-process token bucket holding a single token that refills
// once per interval.
type Local struct {
	lim *rate.Limiter
}

// NewLocal returns a limiter allowing one request per interval.  A
// non-positive interval disables limiting.
func NewLocal(interval time.Duration) *Local {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Local{lim: rate.NewLimiter(limit, 1)}
}

func (l *Local) Wait(ctx context.Context) error {
	err := l.lim.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return ErrWouldExceedDeadline
}

// Unlimited never blocks.
var Unlimited Limiter = NewLocal(0)
