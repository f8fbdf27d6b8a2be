package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// SearchConfig controls the nearby-court search pipeline: upstream endpoints,
// the search area and the pacing of reverse-geocode requests.
type SearchConfig struct {
	OverpassURL  string        `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	NominatimURL string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org/reverse"`
	UserAgent    string        `env:"GEOCODER_USER_AGENT" envDefault:"court-reservation/1.0"`
	HTTPTimeout  time.Duration `env:"SEARCH_HTTP_TIMEOUT" envDefault:"30s"`
	// Timeout bounds a whole search request, paced geocoding included.
	Timeout time.Duration `env:"SEARCH_TIMEOUT" envDefault:"90s"`

	RadiusMeters int `env:"SEARCH_RADIUS_METERS" envDefault:"3000"`
	MaxResults   int `env:"SEARCH_MAX_RESULTS" envDefault:"10"`

	LocateTimeout time.Duration `env:"LOCATE_TIMEOUT" envDefault:"5s"`
	FallbackLat   float64       `env:"FALLBACK_LAT" envDefault:"18.4549376"`
	FallbackLon   float64       `env:"FALLBACK_LON" envDefault:"-69.9400192"`

	// GeocodeInterval is the minimum spacing between two reverse-geocode
	// requests, shared by every search running against the same limiter.
	GeocodeInterval time.Duration `env:"GEOCODE_INTERVAL" envDefault:"1100ms"`
	// GeocodeLimiter selects "local" (per process) or "redis" (per cluster).
	GeocodeLimiter  string        `env:"GEOCODE_LIMITER" envDefault:"local"`
	GeocodeCacheTTL time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"168h"`
}

// LoadSearchConfig reads SearchConfig from the environment and clamps values
// that would make the pipeline misbehave.
func LoadSearchConfig() (SearchConfig, error) {
	cfg, err := env.ParseAs[SearchConfig]()
	if err != nil {
		return SearchConfig{}, fmt.Errorf("parsing search environment: %w", err)
	}
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 3000
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.LocateTimeout <= 0 {
		cfg.LocateTimeout = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.GeocodeInterval < 0 {
		cfg.GeocodeInterval = 0
	}
	return cfg, nil
}
