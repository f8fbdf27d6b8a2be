package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/config"
	"github.com/iliyamo/court-reservation/internal/handler"
	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/sport"
)

type verifierFunc func(ctx context.Context, raw string) (identity.Identity, error)

func (f verifierFunc) Verify(ctx context.Context, raw string) (identity.Identity, error) {
	return f(ctx, raw)
}

// "user-<sub>" and "admin-<sub>" tokens verify with the matching role.
var roleVerifier = verifierFunc(func(_ context.Context, raw string) (identity.Identity, error) {
	if sub, ok := strings.CutPrefix(raw, "user-"); ok {
		return identity.Identity{Subject: sub, Role: model.RoleUser, Provider: identity.ProviderLocal}, nil
	}
	if sub, ok := strings.CutPrefix(raw, "admin-"); ok {
		return identity.Identity{Subject: sub, Role: model.RoleAdmin, Provider: identity.ProviderLocal}, nil
	}
	return identity.Identity{}, errors.New("bad token")
})

type stubCourts struct{}

func (stubCourts) Store(context.Context, string, []model.Place, []string) error { return nil }
func (stubCourts) Saved(context.Context, string) ([]model.Place, error) {
	return []model.Place{}, nil
}

type stubComments struct{}

func (stubComments) Post(_ context.Context, _ identity.Identity, c model.Comment) (model.Comment, error) {
	return c, nil
}
func (stubComments) Reply(_ context.Context, _ identity.Identity, c model.Comment) (model.Comment, error) {
	return c, nil
}
func (stubComments) All(context.Context) ([]model.Comment, error) { return []model.Comment{}, nil }
func (stubComments) Delete(context.Context, string) error { return nil }

func newServer() *echo.Echo {
	e := echo.New()
	Register(e, Handlers{
		Auth:         handler.NewAuthHandler(config.Config{}, nil, nil, nil, nil),
		Search:       &handler.SearchHandler{Sports: sport.Default},
		Courts:       &handler.CourtHandler{Courts: stubCourts{}},
		Reservations: &handler.ReservationHandler{},
		Profile:      &handler.ProfileHandler{},
		Comments:     &handler.CommentHandler{Comments: stubComments{}},
		Verifier:     roleVerifier,
	})
	return e
}

func TestRouteGroups(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"public sports", http.MethodGet, "/v1/sports", "", http.StatusOK},
		{"public slots", http.MethodGet, "/v1/reservations/slots", "", http.StatusOK},
		{"public comments", http.MethodGet, "/v1/comments/all", "", http.StatusOK},
		{"me anonymous", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
		{"me signed in", http.MethodGet, "/v1/me", "user-7", http.StatusOK},
		{"user group anonymous", http.MethodGet, "/v1/courts/saved", "", http.StatusUnauthorized},
		{"user group bad token", http.MethodGet, "/v1/courts/saved", "garbage", http.StatusUnauthorized},
		{"user group signed in", http.MethodGet, "/v1/courts/saved", "user-7", http.StatusOK},
		{"admin anonymous", http.MethodDelete, "/v1/admin/comments/c1", "", http.StatusUnauthorized},
		{"admin as user", http.MethodDelete, "/v1/admin/comments/c1", "user-7", http.StatusForbidden},
		{"admin as admin", http.MethodDelete, "/v1/admin/comments/c1", "admin-1", http.StatusNoContent},
	}
	e := newServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("%s %s = %d, want %d (%s)", tt.method, tt.path, rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}
