package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"60"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" envDefault:"ip_user_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" envDefault:"rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" envDefault:"false"`

	Burst       int           `env:"RATE_LIMIT_BURST" envDefault:"-1"`
	RefillEvery time.Duration `env:"RATE_LIMIT_REFILL_EVERY" envDefault:"0s"`
}

func LoadRateLimitConfig() RateLimitConfig {
	def, err := env.ParseAs[RateLimitConfig]()
	if err != nil {
		def = RateLimitConfig{
			Enabled: true, Capacity: 60, RefillTokens: 1, RefillInterval: time.Second,
			TTL: 10 * time.Minute, KeyStrategy: "ip_user_route", Prefix: "rl",
		}
	}
	return def.Normalize()
}

// Normalize applies the shorthand overrides (burst, refill-every) and clamps
// values so that the Lua bucket always makes progress.
func (c RateLimitConfig) Normalize() RateLimitConfig {
	if c.Burst > 0 {
		c.Capacity = c.Burst
	}
	if c.RefillEvery > 0 {
		c.RefillTokens = 1
		c.RefillInterval = c.RefillEvery
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
	return c
}
