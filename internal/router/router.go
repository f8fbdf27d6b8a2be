// Package router registers the HTTP routes of the API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/handler"
	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/middleware"
)

// Handlers groups everything the route tables need.  Limiter is applied to
// every /v1 route after authentication so buckets can be keyed per user;
// Cache wraps the cacheable public listings.  Both may be pass-through.
type Handlers struct {
	Health       handler.Health
	Auth         *handler.AuthHandler
	Search       *handler.SearchHandler
	Courts       *handler.CourtHandler
	Reservations *handler.ReservationHandler
	Profile      *handler.ProfileHandler
	Comments     *handler.CommentHandler
	OpenAPI      echo.HandlerFunc

	Verifier identity.Verifier
	Limiter  echo.MiddlewareFunc
	Cache    echo.MiddlewareFunc
}

func (h Handlers) limiter() echo.MiddlewareFunc {
	if h.Limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return h.Limiter
}

func (h Handlers) cache() echo.MiddlewareFunc {
	if h.Cache == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return h.Cache
}

// Register installs every route group.
func Register(e *echo.Echo, h Handlers) {
	RegisterRoutes(e, h)
	RegisterAuth(e, h)
	RegisterPublic(e, h)
	RegisterUser(e, h)
	RegisterAdmin(e, h)
}

// RegisterRoutes registers health and API documentation.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)
	e.GET("/healthz", h.Health.Check)
	if h.OpenAPI != nil {
		e.GET("/openapi.json", h.OpenAPI)
		docs := handler.Docs()
		e.GET("/docs", docs)
		e.GET("/docs/*", docs)
	}
}

// RegisterAuth registers the local account endpoints.  Register, login,
// refresh and logout need no session; /v1/me does.
func RegisterAuth(e *echo.Echo, h Handlers) {
	a := h.Auth
	g := e.Group("/v1/auth", h.limiter())
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.RequireAuth(h.Verifier))
}
