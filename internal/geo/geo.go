// Package geo resolves the position a nearby search is centered on and
// measures distances between coordinates.
package geo

import (
	"context"
	"errors"
	"math"
	"time"
)

// EarthRadius is the mean Earth radius in meters used by Distance.
const EarthRadius = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p lies inside the WGS84 coordinate ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	const rad = math.Pi / 180
	lat1 := a.Lat * rad
	lat2 := b.Lat * rad
	sinDLat := math.Sin((b.Lat - a.Lat) * rad / 2)
	sinDLon := math.Sin((b.Lon - a.Lon) * rad / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ErrUnavailable is returned by locators that have no position to offer.
var ErrUnavailable = errors.New("geo: position unavailable")

// Locator obtains the current position of the searching user.
type Locator interface {
	Locate(ctx context.Context) (Point, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (Point, error)

func (f LocatorFunc) Locate(ctx context.Context) (Point, error) { return f(ctx) }

// Static always returns p.
func Static(p Point) Locator {
	return LocatorFunc(func(context.Context) (Point, error) { return p, nil })
}

// Chain returns a locator that tries each locator in order and returns the
// first valid position.  Nil entries are skipped.
func Chain(locators ...Locator) Locator {
	return LocatorFunc(func(ctx context.Context) (Point, error) {
		err := ErrUnavailable
		for _, l := range locators {
			if l == nil {
				continue
			}
			p, lerr := l.Locate(ctx)
			if lerr == nil && p.Valid() {
				return p, nil
			}
			if lerr != nil {
				err = lerr
			}
			if ctx.Err() != nil {
				return Point{}, ctx.Err()
			}
		}
		return Point{}, err
	})
}

// Resolve asks l for a position, waiting at most timeout.  When the locator
// is nil, fails, times out or reports an out-of-range point, fallback is
// returned and the second result is true.  There is no retry.
func Resolve(ctx context.Context, l Locator, timeout time.Duration, fallback Point) (Point, bool) {
	if l == nil {
		return fallback, true
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		p   Point
		err error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := l.Locate(ctx)
		ch <- result{p, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil || !r.p.Valid() {
			return fallback, true
		}
		return r.p, false
	case <-ctx.Done():
		return fallback, true
	}
}
