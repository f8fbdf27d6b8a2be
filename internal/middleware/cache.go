package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/court-reservation/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) truncated() bool {
	return cw.limit > 0 && cw.size > cw.limit
}

// CacheKey builds a stable cache key honoring prefix/strategy.  Keys have
// the form <prefix>:<scope hash>:<query hash>, so every cached variant of a
// route shares one prefix that Purge can match.
func CacheKey(cfg config.CacheConfig, method, route, query string) string {
	var scope []string
	useQuery := false
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		scope = []string{"route", route}
	case "method_route":
		scope = []string{"method", method, "route", route}
	case "method_route_query":
		scope = []string{"method", method, "route", route}
		useQuery = true
	default: // "route_query"
		scope = []string{"route", route}
		useQuery = true
	}
	if !useQuery {
		query = ""
	}
	return fmt.Sprintf("%s:%x", scopePrefix(cfg.Prefix, scope), sha1.Sum([]byte("q:"+query)))
}

func scopePrefix(prefix string, scope []string) string {
	return fmt.Sprintf("%s:%x", prefix, sha1.Sum([]byte(strings.Join(scope, ":"))))
}

// routePattern matches every cached GET variant of route.
func routePattern(cfg config.CacheConfig, route string) string {
	k := CacheKey(cfg, http.MethodGet, route, "")
	return k[:strings.LastIndexByte(k, ':')+1] + "*"
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// ResponseCache stores successful responses in Redis, headers included, so
// clients see identical bytes on a hit.  Only the configured methods are
// cached; responses larger than MaxBodyBytes are not stored.
type ResponseCache struct {
	cfg    config.CacheConfig
	rdb    *redis.Client
	logger *slog.Logger
}

// NewResponseCache returns a cache.  With caching disabled or no Redis
// client the middleware passes requests through and Purge is a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, logger *slog.Logger) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseCache{cfg: cfg, rdb: rdb, logger: logger}
}

func (rc *ResponseCache) active() bool {
	return rc != nil && rc.cfg.Enabled && rc.rdb != nil
}

// Middleware returns the echo middleware.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.active() {
		return passThrough
	}
	cfg, rdb := rc.cfg, rc.rdb
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !cfg.Methods[strings.ToUpper(req.Method)] {
				return next(c)
			}
			key := CacheKey(cfg, req.Method, c.Path(), req.URL.RawQuery)

			if bs, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated() {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.SetEx(context.WithoutCancel(req.Context()), key, payload, cfg.TTL).Err(); err != nil {
				rc.logger.Warn("response cache write failed", "key", key, "err", err)
			}
			return nil
		}
	}
}

// Purge drops every cached GET response of route, whatever its query
// string.
func (rc *ResponseCache) Purge(ctx context.Context, route string) {
	if !rc.active() {
		return
	}
	pattern := routePattern(rc.cfg, route)
	var keys []string
	iter := rc.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		rc.logger.Warn("response cache purge failed", "pattern", pattern, "err", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
		rc.logger.Warn("response cache purge failed", "pattern", pattern, "err", err)
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
