package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/model"
)

// RegisterAdmin registers moderation endpoints.  All routes require a valid
// token and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers) {
	g := e.Group("/v1/admin",
		middleware.RequireAuth(h.Verifier),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.DELETE("/comments/:id", h.Comments.Delete)
}
