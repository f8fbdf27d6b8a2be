package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills the bucket stored at KEYS[1] for the time elapsed
// since the last refill and takes one token when available.  It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Bucket is a token bucket kept in Redis.
type Bucket struct {
	rdb          *redis.Client
	capacity     int
	refillTokens int
	interval     time.Duration
	ttl          time.Duration
	now          func() time.Time
}

// NewBucket returns a bucket holding capacity tokens and adding refillTokens
// every interval.  Idle buckets expire after ttl.
func NewBucket(rdb *redis.Client, capacity, refillTokens int, interval, ttl time.Duration) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	if refillTokens < 1 {
		refillTokens = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return &Bucket{
		rdb:          rdb,
		capacity:     capacity,
		refillTokens: refillTokens,
		interval:     interval,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Capacity returns the bucket size.
func (b *Bucket) Capacity() int { return b.capacity }

// Take tries to remove one token from the bucket stored at key.
func (b *Bucket) Take(ctx context.Context, key string) (Decision, error) {
	if b == nil || b.rdb == nil {
		return Decision{}, fmt.Errorf("ratelimit: no redis client")
	}
	args := []any{
		b.now().UnixMilli(),
		b.capacity,
		b.refillTokens,
		b.interval.Milliseconds(),
		int64(b.ttl / time.Second),
	}
	vals, err := tokenBucketScript.Run(ctx, b.rdb, []string{key}, args...).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: run script: %w", err)
	}
	return parseDecision(vals)
}

func parseDecision(vals any) (Decision, error) {
	arr, ok := vals.([]any)
	if !ok || len(arr) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
	}
	return Decision{
		Allowed:    asInt64(arr[0]) == 1,
		Remaining:  asInt64(arr[1]),
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// minRetry keeps Shared.Wait from spinning when the script reports a zero
// retry delay for an empty bucket.
const minRetry = 10 * time.Millisecond

// Shared is a Limiter drawing from one Redis bucket key.  While Redis fails,
// requests are paced by the fallback limiter instead.
type Shared struct {
	bucket   *Bucket
	key      string
	fallback Limiter
	logger   *slog.Logger
}

// NewShared returns a Limiter over bucket at key.
func NewShared(bucket *Bucket, key string, fallback Limiter, logger *slog.Logger) *Shared {
	if fallback == nil {
		fallback = Unlimited
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Shared{bucket: bucket, key: key, fallback: fallback, logger: logger}
}

func (s *Shared) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := s.bucket.Take(ctx, s.key)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("shared rate limiter unavailable, using local", "key", s.key, "err", err)
			return s.fallback.Wait(ctx)
		}
		if d.Allowed {
			return nil
		}
		retry := max(d.RetryAfter, minRetry)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < retry {
			return ErrWouldExceedDeadline
		}
		if err := sleep(ctx, retry); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
