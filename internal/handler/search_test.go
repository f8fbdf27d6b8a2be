package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/overpass"
	"github.com/iliyamo/court-reservation/internal/service"
	"github.com/iliyamo/court-reservation/internal/sport"
)

type fakeFinder struct {
	res   service.SearchResult
	err   error
	query string
	at    geo.Point
	found bool
}

func (f *fakeFinder) Search(ctx context.Context, query string, _ sport.Table, locator geo.Locator) (service.SearchResult, error) {
	f.query = query
	if locator != nil {
		if p, err := locator.Locate(ctx); err == nil {
			f.at, f.found = p, true
		}
	}
	return f.res, f.err
}

type fakePositions map[string]geo.Point

func (f fakePositions) LocatorFor(uid string) geo.Locator {
	return geo.LocatorFunc(func(context.Context) (geo.Point, error) {
		p, ok := f[uid]
		if !ok {
			return geo.Point{}, geo.ErrUnavailable
		}
		return p, nil
	})
}

func searchServer(f *fakeFinder, positions PositionSource) *echo.Echo {
	h := &SearchHandler{Finder: f, Sports: sport.Default, Positions: positions, Logger: quietLogger()}
	e := echo.New()
	e.GET("/v1/courts/nearby", h.Nearby, middleware.OptionalAuth(stubVerifier))
	e.GET("/v1/sports", h.ListSports)
	return e
}

func TestNearby(t *testing.T) {
	place := model.Place{ID: 42, DisplayName: "Cancha de soccer", FormattedAddress: "Calle 1", Sport: "soccer"}
	upstream := fmt.Errorf("search courts: %w", &overpass.StatusError{StatusCode: 504, Body: "busy"})

	tests := []struct {
		name      string
		path      string
		res       service.SearchResult
		err       error
		wantCode  int
		wantTotal int
	}{
		{"results", "/v1/courts/nearby?q=F%C3%BAtbol&lat=18.5&lon=-69.9",
			service.SearchResult{Places: []model.Place{place}, Origin: geo.Point{Lat: 18.5, Lon: -69.9}}, nil, http.StatusOK, 1},
		{"empty stays an array", "/v1/courts/nearby", service.SearchResult{Fallback: true}, nil, http.StatusOK, 0},
		{"bad latitude", "/v1/courts/nearby?lat=abc&lon=1", service.SearchResult{}, nil, http.StatusBadRequest, 0},
		{"out of range", "/v1/courts/nearby?lat=91&lon=1", service.SearchResult{}, nil, http.StatusBadRequest, 0},
		{"only one coordinate", "/v1/courts/nearby?lat=10", service.SearchResult{}, nil, http.StatusBadRequest, 0},
		{"upstream failure", "/v1/courts/nearby", service.SearchResult{}, upstream, http.StatusBadGateway, 0},
		{"timeout", "/v1/courts/nearby", service.SearchResult{}, context.DeadlineExceeded, http.StatusGatewayTimeout, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFinder{res: tt.res, err: tt.err}
			rec := do(t, searchServer(f, nil), http.MethodGet, tt.path, "", nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if rec.Code != http.StatusOK {
				if decode[ErrorResponse](t, rec).Error == "" {
					t.Fatalf("error body missing code: %s", rec.Body.String())
				}
				return
			}
			body := decode[nearbyResp](t, rec)
			if body.Total != tt.wantTotal || len(body.Data) != tt.wantTotal {
				t.Fatalf("total = %d, len = %d, want %d", body.Total, len(body.Data), tt.wantTotal)
			}
			if body.Fallback != tt.res.Fallback {
				t.Fatalf("fallback = %v", body.Fallback)
			}
		})
	}
}

func TestNearbyUpstreamMessage(t *testing.T) {
	f := &fakeFinder{err: errors.New("search courts: overpass: unexpected status 429: slow down")}
	rec := do(t, searchServer(f, nil), http.MethodGet, "/v1/courts/nearby", "", nil)
	body := decode[ErrorResponse](t, rec)
	if body.Error != "search_failed" || body.Message == "" {
		t.Fatalf("body = %+v", body)
	}
}

func TestNearbyLocatorOrder(t *testing.T) {
	positions := fakePositions{"u1": {Lat: 10, Lon: 20}}

	tests := []struct {
		name  string
		path  string
		user  string
		want  geo.Point
		found bool
	}{
		{"request coordinates win", "/v1/courts/nearby?lat=1&lon=2", "u1", geo.Point{Lat: 1, Lon: 2}, true},
		{"stored position for signed-in caller", "/v1/courts/nearby", "u1", geo.Point{Lat: 10, Lon: 20}, true},
		{"guest without coordinates", "/v1/courts/nearby", "", geo.Point{}, false},
		{"caller without stored position", "/v1/courts/nearby", "u2", geo.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFinder{}
			rec := do(t, searchServer(f, positions), http.MethodGet, tt.path, tt.user, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d", rec.Code)
			}
			if f.found != tt.found || f.at != tt.want {
				t.Fatalf("located %v (%v), want %v (%v)", f.at, f.found, tt.want, tt.found)
			}
		})
	}
}

func TestNearbyPassesQuery(t *testing.T) {
	f := &fakeFinder{}
	do(t, searchServer(f, nil), http.MethodGet, "/v1/courts/nearby?q=Tenis", "", nil)
	if f.query != "Tenis" {
		t.Fatalf("query = %q", f.query)
	}
}

func TestListSports(t *testing.T) {
	rec := do(t, searchServer(&fakeFinder{}, nil), http.MethodGet, "/v1/sports", "", nil)
	body := decode[sportsResp](t, rec)
	if len(body.Data) != len(sport.Default) || body.Data[0].Key != "soccer" {
		t.Fatalf("sports = %+v", body.Data)
	}
}
