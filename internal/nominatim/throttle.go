package nominatim

import (
	"context"

	"github.com/iliyamo/court-reservation/internal/ratelimit"
)

type throttled struct {
	next    Geocoder
	limiter ratelimit.Limiter
}

// Throttle returns a Geocoder that takes one token from limiter before
// every request to next.
func Throttle(next Geocoder, limiter ratelimit.Limiter) Geocoder {
	if limiter == nil {
		return next
	}
	return &throttled{next: next, limiter: limiter}
}

func (t *throttled) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}
	return t.next.Reverse(ctx, lat, lon)
}
