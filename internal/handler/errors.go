package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/repository"
	"github.com/iliyamo/court-reservation/internal/service"
)

// requestTimeout bounds database work done by a single handler.
const requestTimeout = 5 * time.Second

func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

// writeError maps service and repository errors onto HTTP responses.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fail(c, http.StatusBadRequest, "validation_failed", strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email_exists", "email already exists")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "conflict", "resource already exists")
	case errors.Is(err, service.ErrAvatarsDisabled), errors.Is(err, geo.ErrUnavailable):
		return fail(c, http.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fail(c, http.StatusGatewayTimeout, "timeout", "request timed out")
	}
	if logger != nil {
		logger.Error("request failed", "path", c.Path(), "err", err)
	}
	return fail(c, http.StatusInternalServerError, "internal", "internal error")
}

// caller returns the authenticated subject or writes a 401.
func caller(c echo.Context) (string, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || id.Subject == "" {
		return "", false
	}
	return id.Subject, true
}

func unauthorized(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "unauthorized", "authentication required")
}
