package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/service"
)

// ProfileService reads and edits the caller's profile.
type ProfileService interface {
	Get(ctx context.Context, uid string) (model.Profile, error)
	Save(ctx context.Context, id identity.Identity, p model.Profile) (model.Profile, error)
	UploadPicture(ctx context.Context, uid, contentType string, body io.Reader, size int64) (string, error)
}

// PositionSink stores reported device positions.
type PositionSink interface {
	Save(ctx context.Context, uid string, p geo.Point) error
}

type ProfileHandler struct {
	Profiles  ProfileService
	Positions PositionSink
	Logger    *slog.Logger
}

type editProfileReq struct {
	Profile model.Profile `json:"profile"`
}

// Info: GET /v1/user/settings/info
func (h *ProfileHandler) Info(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Edit: POST /v1/user/settings/edit
func (h *ProfileHandler) Edit(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	var req editProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Profiles.Save(ctx, id, req.Profile)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Picture: POST /v1/user/settings/picture (multipart field "file")
func (h *ProfileHandler) Picture(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "validation_failed", "multipart field 'file' is required")
	}
	if fh.Size > service.MaxAvatarBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds 5 MiB")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "cannot read file")
	}
	defer f.Close()

	// Upload gets a longer budget than plain DB work.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 4*requestTimeout)
	defer cancel()

	url, err := h.Profiles.UploadPicture(ctx, uid, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"pfpSrc": url})
}

type locationReq struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Location: PUT /v1/me/location
func (h *ProfileHandler) Location(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var req locationReq
	if err := c.Bind(&req); err != nil || req.Lat == nil || req.Lon == nil {
		return fail(c, http.StatusBadRequest, "validation_failed", "lat and lon are required")
	}
	p := geo.Point{Lat: *req.Lat, Lon: *req.Lon}
	if !p.Valid() {
		return fail(c, http.StatusBadRequest, "validation_failed", "lat and lon must be valid coordinates")
	}
	if h.Positions == nil {
		return writeError(c, h.Logger, geo.ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Positions.Save(ctx, uid, p); err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
