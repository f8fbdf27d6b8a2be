package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/identity"
)

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// RequireAuth rejects requests without a bearer token accepted by v and
// stores the caller identity in the context (see CurrentIdentity).
func RequireAuth(v identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing bearer token"})
			}
			id, err := v.Verify(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid token"})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalAuth stores the caller identity when a valid bearer token is
// present and lets anonymous requests through otherwise.
func OptionalAuth(v identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				if id, err := v.Verify(c.Request().Context(), raw); err == nil {
					setIdentity(c, id)
				}
			}
			return next(c)
		}
	}
}
