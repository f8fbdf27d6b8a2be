package main

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/court-reservation/internal/config"
	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/nominatim"
	"github.com/iliyamo/court-reservation/internal/overpass"
	"github.com/iliyamo/court-reservation/internal/ratelimit"
	"github.com/iliyamo/court-reservation/internal/service"
)

const geocodeLimiterKey = "rl:geocode"

// newGeocodeLimiter paces reverse-geocode requests.  The redis limiter is
// shared by every replica and falls back to the local one when Redis errors.
func newGeocodeLimiter(scfg config.SearchConfig, rdb *redis.Client, logger *slog.Logger) ratelimit.Limiter {
	if scfg.GeocodeInterval <= 0 {
		return ratelimit.Unlimited
	}
	local := ratelimit.NewLocal(scfg.GeocodeInterval)
	if scfg.GeocodeLimiter != "redis" || rdb == nil {
		logger.Info("geocode limiter", "kind", "local", "interval", scfg.GeocodeInterval)
		return local
	}
	bucket := ratelimit.NewBucket(rdb, 1, 1, scfg.GeocodeInterval, 10*scfg.GeocodeInterval)
	logger.Info("geocode limiter", "kind", "redis", "interval", scfg.GeocodeInterval)
	return ratelimit.NewShared(bucket, geocodeLimiterKey, local, logger)
}

// newFinder assembles the search pipeline: cache, then limiter, then the
// Nominatim client, with Overpass as the element source.
func newFinder(scfg config.SearchConfig, rdb *redis.Client, logger *slog.Logger) *service.Finder {
	httpClient := &http.Client{Timeout: scfg.HTTPTimeout}

	geocoder := nominatim.NewCache(
		nominatim.Throttle(
			nominatim.NewClient(httpClient, scfg.NominatimURL, scfg.UserAgent),
			newGeocodeLimiter(scfg, rdb, logger),
		),
		rdb, scfg.GeocodeCacheTTL, logger,
	)
	elements := overpass.NewClient(httpClient, scfg.OverpassURL, scfg.UserAgent)

	return service.NewFinder(elements, geocoder, service.FinderConfig{
		RadiusMeters:  scfg.RadiusMeters,
		MaxResults:    scfg.MaxResults,
		LocateTimeout: scfg.LocateTimeout,
		Fallback:      geo.Point{Lat: scfg.FallbackLat, Lon: scfg.FallbackLon},
	}, logger)
}
