package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/service"
	"github.com/iliyamo/court-reservation/internal/sport"
)

// statusClientClosed is logged when the caller went away mid-search.
const statusClientClosed = 499

// CourtFinder runs the nearby-court search.
type CourtFinder interface {
	Search(ctx context.Context, query string, table sport.Table, locator geo.Locator) (service.SearchResult, error)
}

// PositionSource yields the stored device position of a user.
type PositionSource interface {
	LocatorFor(uid string) geo.Locator
}

// SearchHandler serves the public search endpoints.  Timeout bounds a whole
// search including every paced reverse-geocode call.
type SearchHandler struct {
	Finder    CourtFinder
	Sports    sport.Table
	Positions PositionSource
	Timeout   time.Duration
	Logger    *slog.Logger
}

type nearbyResp struct {
	Data     []model.Place `json:"data"`
	Total    int           `json:"total"`
	Origin   geo.Point     `json:"origin"`
	Fallback bool          `json:"fallback"`
}

// parsePoint reads optional lat/lon query parameters.  Both or neither must
// be present.
func parsePoint(c echo.Context) (geo.Point, bool, error) {
	rawLat := strings.TrimSpace(c.QueryParam("lat"))
	rawLon := strings.TrimSpace(c.QueryParam("lon"))
	if rawLat == "" && rawLon == "" {
		return geo.Point{}, false, nil
	}
	lat, err1 := strconv.ParseFloat(rawLat, 64)
	lon, err2 := strconv.ParseFloat(rawLon, 64)
	p := geo.Point{Lat: lat, Lon: lon}
	if err1 != nil || err2 != nil || !p.Valid() {
		return geo.Point{}, false, errors.New("lat and lon must be valid coordinates")
	}
	return p, true, nil
}

// Nearby: GET /v1/courts/nearby?q=&lat=&lon=
func (h *SearchHandler) Nearby(c echo.Context) error {
	p, ok, err := parsePoint(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "validation_failed", err.Error())
	}

	var locators []geo.Locator
	if ok {
		locators = append(locators, geo.Static(p))
	}
	if id, authed := middleware.CurrentIdentity(c); authed && h.Positions != nil {
		locators = append(locators, h.Positions.LocatorFor(id.Subject))
	}
	var locator geo.Locator
	if len(locators) > 0 {
		locator = geo.Chain(locators...)
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	res, err := h.Finder.Search(ctx, c.QueryParam("q"), h.Sports, locator)
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		return fail(c, http.StatusGatewayTimeout, "timeout", "search timed out")
	case errors.Is(err, context.Canceled):
		return c.NoContent(statusClientClosed)
	default:
		if h.Logger != nil {
			h.Logger.Warn("court search failed", "err", err)
		}
		return fail(c, http.StatusBadGateway, "search_failed", err.Error())
	}

	places := res.Places
	if places == nil {
		places = []model.Place{}
	}
	return c.JSON(http.StatusOK, nearbyResp{Data: places, Total: len(places), Origin: res.Origin, Fallback: res.Fallback})
}

// Sports: GET /v1/sports
func (h *SearchHandler) ListSports(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": h.Sports})
}
