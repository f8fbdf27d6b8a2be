package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/middleware"
)

// RegisterUser registers endpoints scoped to the authenticated caller.
// Every handler reads the caller id from the verified identity, never from
// the request.
func RegisterUser(e *echo.Echo, h Handlers) {
	g := e.Group("/v1", middleware.RequireAuth(h.Verifier), h.limiter())
	registerUserRoutes(g, h)
}

func registerUserRoutes(g *echo.Group, h Handlers) {
	g.POST("/courts/store", h.Courts.Store)
	g.GET("/courts/saved", h.Courts.Saved)

	g.POST("/reservations/store", h.Reservations.Store)
	g.GET("/reservations/saved", h.Reservations.Saved)

	g.GET("/user/settings/info", h.Profile.Info)
	g.POST("/user/settings/edit", h.Profile.Edit)
	g.POST("/user/settings/picture", h.Profile.Picture)
	g.PUT("/me/location", h.Profile.Location)

	g.POST("/comments/post", h.Comments.Post)
	g.POST("/comments/reply", h.Comments.Reply)
}
