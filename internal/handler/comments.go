package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/model"
)

// CommentsRoute is the cached listing purged after every write.
const CommentsRoute = "/v1/comments/all"

// CommentService posts, lists and removes court reviews.
type CommentService interface {
	Post(ctx context.Context, id identity.Identity, c model.Comment) (model.Comment, error)
	Reply(ctx context.Context, id identity.Identity, c model.Comment) (model.Comment, error)
	All(ctx context.Context) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CachePurger drops a cached GET response.
type CachePurger interface {
	Purge(ctx context.Context, route string)
}

type CommentHandler struct {
	Comments CommentService
	Cache    CachePurger
	Logger   *slog.Logger
}

type postCommentReq struct {
	Comment *model.Comment `json:"comment"`
}

type replyReq struct {
	Reply *model.Comment `json:"reply"`
}

func (h *CommentHandler) purge(ctx context.Context) {
	if h.Cache != nil {
		h.Cache.Purge(ctx, CommentsRoute)
	}
}

// Post: POST /v1/comments/post
func (h *CommentHandler) Post(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	var req postCommentReq
	if err := c.Bind(&req); err != nil || req.Comment == nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "body must contain a comment")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	created, err := h.Comments.Post(ctx, id, *req.Comment)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, created)
}

// Reply: POST /v1/comments/reply
func (h *CommentHandler) Reply(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	var req replyReq
	if err := c.Bind(&req); err != nil || req.Reply == nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "body must contain a reply")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	created, err := h.Comments.Reply(ctx, id, *req.Reply)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, created)
}

// All: GET /v1/comments/all
func (h *CommentHandler) All(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Comments.All(ctx)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if list == nil {
		list = []model.Comment{}
	}
	return c.JSON(http.StatusOK, list)
}

// Delete: DELETE /v1/admin/comments/:id
func (h *CommentHandler) Delete(c echo.Context) error {
	cid := strings.TrimSpace(c.Param("id"))
	if cid == "" {
		return fail(c, http.StatusBadRequest, "validation_failed", "comment id is required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Comments.Delete(ctx, cid); err != nil {
		return writeError(c, h.Logger, err)
	}
	h.purge(ctx)
	return c.NoContent(http.StatusNoContent)
}
