package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/model"
)

// CourtService stores the caller's favorite courts.
type CourtService interface {
	Store(ctx context.Context, uid string, update []model.Place, deleteIDs []string) error
	Saved(ctx context.Context, uid string) ([]model.Place, error)
}

type CourtHandler struct {
	Courts CourtService
	Logger *slog.Logger
}

type storeCourtsReq struct {
	CanchasToUpdate []model.Place `json:"canchasToUpdate"`
	IDsToDelete     []string      `json:"idsToDelete"`
}

// Store: POST /v1/courts/store
func (h *CourtHandler) Store(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var req storeCourtsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Courts.Store(ctx, uid, req.CanchasToUpdate, req.IDsToDelete); err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "courts saved",
		"saved":   len(req.CanchasToUpdate),
		"deleted": len(req.IDsToDelete),
	})
}

// Saved: GET /v1/courts/saved
func (h *CourtHandler) Saved(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	places, err := h.Courts.Saved(ctx, uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if places == nil {
		places = []model.Place{}
	}
	return c.JSON(http.StatusOK, places)
}
