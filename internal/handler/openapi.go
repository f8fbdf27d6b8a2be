package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/service"
	"github.com/iliyamo/court-reservation/internal/sport"
)

// ErrorResponse documents every error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type nearbyQuery struct {
	Q   string   `query:"q" description:"Sport display name, e.g. Fútbol. Empty or unknown searches every pitch."`
	Lat *float64 `query:"lat"`
	Lon *float64 `query:"lon"`
}

type commentPath struct {
	ID string `path:"id"`
}

type sportsResp struct {
	Data sport.Table `json:"data"`
}

type slotsResp struct {
	Data []string `json:"data"`
}

type storeReservationsResp struct {
	Message string              `json:"message"`
	Created []model.Reservation `json:"created"`
}

type pictureResp struct {
	PfpSrc string `json:"pfpSrc"`
}

type pictureReq struct {
	File string `formData:"file" format:"binary"`
}

type operation struct {
	method, path, summary string
	req                   any
	resp                  any
	status                int
	errors                []int
}

var operations = []operation{
	{http.MethodGet, "/health", "Health check", nil, echo.Map{}, http.StatusOK, []int{503}},
	{http.MethodPost, "/v1/auth/register", "Create a local account", service.Registration{}, authResp{}, http.StatusCreated, []int{400, 409}},
	{http.MethodPost, "/v1/auth/login", "Sign in", loginReq{}, authResp{}, http.StatusOK, []int{400, 401}},
	{http.MethodPost, "/v1/auth/refresh", "Rotate refresh token", refreshReq{}, authResp{}, http.StatusOK, []int{401}},
	{http.MethodPost, "/v1/auth/refresh-access", "New access token", refreshReq{}, echo.Map{}, http.StatusOK, []int{401}},
	{http.MethodPost, "/v1/auth/logout", "Revoke sessions", refreshReq{}, nil, http.StatusNoContent, []int{400, 401}},
	{http.MethodGet, "/v1/me", "Current identity", nil, echo.Map{}, http.StatusOK, []int{401}},
	{http.MethodGet, "/v1/courts/nearby", "Search courts around the user", nearbyQuery{}, nearbyResp{}, http.StatusOK, []int{400, 502, 504}},
	{http.MethodGet, "/v1/sports", "Sport translation table", nil, sportsResp{}, http.StatusOK, nil},
	{http.MethodPost, "/v1/courts/store", "Save and delete favorite courts", storeCourtsReq{}, echo.Map{}, http.StatusOK, []int{400, 401}},
	{http.MethodGet, "/v1/courts/saved", "Favorite courts", nil, []model.Place{}, http.StatusOK, []int{401}},
	{http.MethodPost, "/v1/reservations/store", "Book and cancel reservations", storeReservationsReq{}, storeReservationsResp{}, http.StatusOK, []int{400, 401}},
	{http.MethodGet, "/v1/reservations/saved", "Reservations", nil, []model.Reservation{}, http.StatusOK, []int{401}},
	{http.MethodGet, "/v1/reservations/slots", "Bookable slots", nil, slotsResp{}, http.StatusOK, nil},
	{http.MethodGet, "/v1/user/settings/info", "Profile", nil, model.Profile{}, http.StatusOK, []int{401, 404}},
	{http.MethodPost, "/v1/user/settings/edit", "Edit profile", editProfileReq{}, model.Profile{}, http.StatusOK, []int{400, 401}},
	{http.MethodPost, "/v1/user/settings/picture", "Upload avatar", pictureReq{}, pictureResp{}, http.StatusOK, []int{400, 401, 404, 413, 503}},
	{http.MethodPut, "/v1/me/location", "Report device position", geo.Point{}, nil, http.StatusNoContent, []int{400, 401, 503}},
	{http.MethodPost, "/v1/comments/post", "Review a court", postCommentReq{}, model.Comment{}, http.StatusCreated, []int{400, 401, 409}},
	{http.MethodPost, "/v1/comments/reply", "Reply to a review", replyReq{}, model.Comment{}, http.StatusCreated, []int{400, 401, 404}},
	{http.MethodGet, "/v1/comments/all", "Reviews with nested replies", nil, []model.Comment{}, http.StatusOK, nil},
	{http.MethodDelete, "/v1/admin/comments/{id}", "Delete a review and its replies", commentPath{}, nil, http.StatusNoContent, []int{401, 403, 404}},
}

// NewOpenAPISpec reflects the public API into an OpenAPI 3 document.
func NewOpenAPISpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Court Reservation API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Nearby sports-court search, favorites, reservations, profiles and reviews.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			return nil, err
		}
		oc.SetSummary(op.summary)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(op.status))
		for _, code := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(code))
		}
		if err := r.AddOperation(oc); err != nil {
			return nil, err
		}
	}
	return r.Spec, nil
}

// OpenAPI serves the reflected document, built once.
func OpenAPI() (echo.HandlerFunc, error) {
	spec, err := NewOpenAPISpec()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, err
	}
	return func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/json; charset=utf-8", data)
	}, nil
}

// Docs serves the embedded Swagger UI under /docs.
func Docs() echo.HandlerFunc {
	return echo.WrapHandler(v5emb.New("Court Reservation API", "/openapi.json", "/docs"))
}
