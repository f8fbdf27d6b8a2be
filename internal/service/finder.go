// Package service holds the business logic behind the HTTP handlers: the
// nearby-court search pipeline and the per-user court, reservation,
// profile and comment operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/nominatim"
	"github.com/iliyamo/court-reservation/internal/overpass"
	"github.com/iliyamo/court-reservation/internal/ratelimit"
	"github.com/iliyamo/court-reservation/internal/sport"
)

// Placeholders used until reverse geocoding provides better values.
const (
	DefaultCourtName = "Cancha"
	NoAddress        = "Sin dirección"
)

// ElementSource runs an Overpass query.
type ElementSource interface {
	Interpreter(ctx context.Context, query string) ([]overpass.Element, error)
}

// FinderConfig parameterises a Finder.
type FinderConfig struct {
	RadiusMeters  int
	MaxResults    int
	LocateTimeout time.Duration
	Fallback      geo.Point
}

// DefaultFinderConfig matches the search area of the mobile client.
var DefaultFinderConfig = FinderConfig{
	RadiusMeters:  3000,
	MaxResults:    10,
	LocateTimeout: 5 * time.Second,
	Fallback:      geo.Point{Lat: 18.4549376, Lon: -69.9400192},
}

// Finder searches playing courts around the user.  The geocoder is expected
// to be paced by a limiter (see nominatim.Throttle); Finder itself never
// sleeps.
type Finder struct {
	elements ElementSource
	geocoder nominatim.Geocoder
	cfg      FinderConfig
	logger   *slog.Logger
}

// NewFinder wires a Finder.  Zero config fields take DefaultFinderConfig
// values.
func NewFinder(elements ElementSource, geocoder nominatim.Geocoder, cfg FinderConfig, logger *slog.Logger) *Finder {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = DefaultFinderConfig.RadiusMeters
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultFinderConfig.MaxResults
	}
	if cfg.LocateTimeout <= 0 {
		cfg.LocateTimeout = DefaultFinderConfig.LocateTimeout
	}
	if cfg.Fallback == (geo.Point{}) {
		cfg.Fallback = DefaultFinderConfig.Fallback
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{elements: elements, geocoder: geocoder, cfg: cfg, logger: logger}
}

// SearchResult is the outcome of one search together with where it was
// centered.
type SearchResult struct {
	Places   []model.Place
	Origin   geo.Point
	Fallback bool
}

// SearchNearby returns courts around the position reported by locator,
// restricted to the sport whose display name in table matches query.
func (f *Finder) SearchNearby(ctx context.Context, query string, table sport.Table, locator geo.Locator) ([]model.Place, error) {
	res, err := f.Search(ctx, query, table, locator)
	if err != nil {
		return nil, err
	}
	return res.Places, nil
}

// Search runs the pipeline: locate, translate the sport, query Overpass and
// enrich every element in order.  Only Overpass failures and cancellation by
// the caller are returned as errors.  A failed reverse geocode keeps the
// provisional name and address; once the deadline is reached the remaining
// elements are returned without geocoding.
func (f *Finder) Search(ctx context.Context, query string, table sport.Table, locator geo.Locator) (SearchResult, error) {
	origin, fellBack := geo.Resolve(ctx, locator, f.cfg.LocateTimeout, f.cfg.Fallback)
	if err := ctx.Err(); err != nil {
		return SearchResult{}, err
	}

	key := table.Resolve(query)
	q := overpass.BuildQuery(overpass.PitchFilter(key), origin.Lat, origin.Lon, f.cfg.RadiusMeters, f.cfg.MaxResults)

	elements, err := f.elements.Interpreter(ctx, q)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search courts: %w", err)
	}

	places, err := f.enrich(ctx, origin, elements)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Places: places, Origin: origin, Fallback: fellBack}, nil
}

func (f *Finder) enrich(ctx context.Context, origin geo.Point, elements []overpass.Element) ([]model.Place, error) {
	places := make([]model.Place, 0, len(elements))
	// Place ids are bare OSM ids, so a way sharing a node's number is
	// dropped like any other repeat.
	seen := make(map[int64]bool, len(elements))
	geocode := f.geocoder != nil

	for _, el := range elements {
		lat, lon, ok := el.Coordinates()
		if !ok {
			continue
		}
		if seen[el.ID] {
			continue
		}
		seen[el.ID] = true

		sportTag := el.Tags["sport"]
		name := el.Tags["name"]
		if name == "" {
			name = DefaultCourtName
			if sportTag != "" {
				name = "Cancha de " + sportTag
			}
		}
		address := NoAddress
		pos := geo.Point{Lat: lat, Lon: lon}

		if geocode {
			res, gerr := f.geocoder.Reverse(ctx, lat, lon)
			switch {
			case gerr == nil:
				if res.Name != "" {
					name = res.Name
				}
				if a := nominatim.FormatAddress(res.Address); a != "" {
					address = a
				}
			case errors.Is(ctx.Err(), context.Canceled):
				return nil, ctx.Err()
			case errors.Is(gerr, ratelimit.ErrWouldExceedDeadline) || ctx.Err() != nil:
				f.logger.Warn("search deadline reached, skipping reverse geocoding", "osm_id", el.ID, "remaining", len(elements)-len(places))
				geocode = false
			default:
				f.logger.Warn("reverse geocode failed", "osm_id", el.ID, "err", gerr)
			}
		}

		places = append(places, model.Place{
			ID:               el.ID,
			DisplayName:      name,
			Location:         model.LatLng{Lat: lat, Lng: lon},
			FormattedAddress: address,
			Sport:            sportTag,
			DistanceMeters:   geo.Distance(origin, pos),
		})
	}
	return places, nil
}
