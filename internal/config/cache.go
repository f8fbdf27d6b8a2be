package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Methods lists the HTTP methods to cache (e.g. GET, HEAD).  TTL defines the
// lifetime of cache entries.  KeyStrategy determines which parts of the request
// contribute to the cache key.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	RawMethods   string        `env:"CACHE_METHODS" envDefault:"GET"`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	// Methods is derived from RawMethods by LoadCacheConfig.
	Methods map[string]bool
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	cfg, err := env.ParseAs[CacheConfig]()
	if err != nil {
		cfg = CacheConfig{Enabled: true, RawMethods: "GET", TTL: 30 * time.Second,
			KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20}
	}
	cfg.Methods = parseMethods(cfg.RawMethods)
	return cfg
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
