package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/service"
)

// ReservationService books and lists the caller's reservations.
type ReservationService interface {
	Store(ctx context.Context, uid string, update []model.Reservation, deleteIDs []string) ([]model.Reservation, error)
	Saved(ctx context.Context, uid string) ([]model.Reservation, error)
}

type ReservationHandler struct {
	Reservations ReservationService
	Logger       *slog.Logger
}

type storeReservationsReq struct {
	ReservationsToUpdate []model.Reservation `json:"reservationsToUpdate"`
	IDsToDelete          []string            `json:"idsToDelete"`
}

// Store: POST /v1/reservations/store
func (h *ReservationHandler) Store(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var req storeReservationsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	created, err := h.Reservations.Store(ctx, uid, req.ReservationsToUpdate, req.IDsToDelete)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if created == nil {
		created = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservations saved", "created": created})
}

// Saved: GET /v1/reservations/saved
func (h *ReservationHandler) Saved(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Reservations.Saved(ctx, uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if list == nil {
		list = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, list)
}

// Slots: GET /v1/reservations/slots
func (h *ReservationHandler) Slots(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": service.Slots()})
}
