package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/middleware"
)

// RegisterPublic registers endpoints open to guests.  The nearby search
// accepts an optional bearer token so a signed-in caller's stored position
// can be used when the request carries no coordinates.
func RegisterPublic(e *echo.Echo, h Handlers) {
	e.GET("/v1/courts/nearby", h.Search.Nearby, middleware.OptionalAuth(h.Verifier), h.limiter())
	e.GET("/v1/sports", h.Search.ListSports)
	e.GET("/v1/reservations/slots", h.Reservations.Slots)
	e.GET("/v1/comments/all", h.Comments.All, h.limiter(), h.cache())
}
