package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health reports liveness and the state of the database and Redis.  The
// database is required; Redis is optional and only reported.
type Health struct {
	DB    *sql.DB
	Redis *redis.Client
}

func (h Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := echo.Map{"status": "ok"}
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		} else {
			body["database"] = "up"
		}
	}
	switch {
	case h.Redis == nil:
		body["redis"] = "disabled"
	case h.Redis.Ping(ctx).Err() != nil:
		body["redis"] = "down"
	default:
		body["redis"] = "up"
	}
	return c.JSON(status, body)
}
