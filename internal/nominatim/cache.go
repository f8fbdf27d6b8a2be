package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through Redis cache in front of a Geocoder.  Entries are
// keyed by coordinates rounded to five decimals (about one meter).  Redis
// failures are logged and the request goes to the wrapped geocoder.
type Cache struct {
	next   Geocoder
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewCache wraps next.  With a nil client or non-positive ttl it returns next
// unchanged.
func NewCache(next Geocoder, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) Geocoder {
	if rdb == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{next: next, rdb: rdb, ttl: ttl, prefix: "geocode", logger: logger}
}

func (c *Cache) key(lat, lon float64) string {
	return fmt.Sprintf("%s:%.5f,%.5f", c.prefix, lat, lon)
}

func (c *Cache) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	key := c.key(lat, lon)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hit Result
		if jerr := json.Unmarshal(raw, &hit); jerr == nil {
			return hit, nil
		}
		c.logger.Warn("geocode cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("geocode cache read failed", "key", key, "err", err)
	}

	res, err := c.next.Reverse(ctx, lat, lon)
	if err != nil {
		return Result{}, err
	}
	if b, jerr := json.Marshal(res); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.logger.Warn("geocode cache write failed", "key", key, "err", serr)
		}
	}
	return res, nil
}
