package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/identity"
)

// Context keys set by the auth middleware.
const (
	ctxIdentity = "identity"
	ctxUserID   = "user_id"
	ctxRole     = "role"
)

func setIdentity(c echo.Context, id identity.Identity) {
	c.Set(ctxIdentity, id)
	c.Set(ctxUserID, id.Subject)
	c.Set(ctxRole, id.Role)
}

// CurrentIdentity returns the caller authenticated by RequireAuth or
// OptionalAuth.
func CurrentIdentity(c echo.Context) (identity.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(identity.Identity)
	return id, ok
}

// userID returns the authenticated subject or "guest".
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "guest"
}
