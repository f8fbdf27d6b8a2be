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

	"github.com/iliyamo/court-reservation/internal/config"
	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
	"github.com/iliyamo/court-reservation/internal/service"
	"github.com/iliyamo/court-reservation/internal/utils"
)

// UserStore is the account storage used by AuthHandler.
type UserStore interface {
	Create(ctx context.Context, email, password, displayName, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists refresh tokens by hash.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ProfileWriter stores the profile created at sign-up.
type ProfileWriter interface {
	Upsert(ctx context.Context, uid string, p model.Profile) error
}

// AuthHandler bundles dependencies for the local account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Tokens   TokenStore
	Profiles ProfileWriter
	Logger   *slog.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, p ProfileWriter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Profiles: p, Logger: logger}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue mints an access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
	sub := strconv.FormatUint(u.ID, 10)
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, sub, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: sub, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates an account and its profile, then returns tokens.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.Registration
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Cedula = strings.TrimSpace(req.Cedula)
	if err := service.ValidateRegistration(req); err != nil {
		return writeError(c, h.Logger, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	profile := model.Profile{Name: req.Name, LastName: req.LastName, Cedula: req.Cedula, Email: req.Email}
	uid, err := h.Users.Create(ctx, req.Email, req.Password, profile.FullName(), model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if err := h.Profiles.Upsert(ctx, strconv.FormatUint(uid, 10), profile); err != nil {
		// Drop the account so the email can register again.
		dctx, dcancel := context.WithTimeout(context.WithoutCancel(ctx), requestTimeout)
		defer dcancel()
		if derr := h.Users.Delete(dctx, uid); derr != nil && h.Logger != nil {
			h.Logger.Error("remove user without profile", "user_id", uid, "err", derr)
		}
		return writeError(c, h.Logger, err)
	}

	resp, err := h.issue(ctx, model.User{ID: uid, Email: req.Email, DisplayName: profile.FullName(), Role: model.RoleUser})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body", "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "validation_failed", "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	}
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// validRefresh binds the body and resolves the owner of its refresh token.
func (h *AuthHandler) validRefresh(ctx context.Context, c echo.Context) (string, uint64, bool) {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return "", 0, false
	}
	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		return "", 0, false
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return "", 0, false
	}
	return hash, userID, true
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	hash, userID, ok := h.validRefresh(ctx, c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "invalid_refresh", "invalid refresh token")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return writeError(c, h.Logger, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	_, userID, ok := h.validRefresh(ctx, c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "invalid_refresh", "invalid refresh token")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, "invalid_refresh", "invalid refresh token")
	}
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, strconv.FormatUint(u.ID, 10), u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the bearer's account otherwise.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer "); ok {
		if id, err := identity.NewLocal(h.Cfg.JWTSecret).Verify(c.Request().Context(), strings.TrimSpace(raw)); err == nil {
			uid, _ = strconv.ParseUint(id.Subject, 10, 64)
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return fail(c, http.StatusUnauthorized, "invalid_refresh", "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return writeError(c, h.Logger, err)
		}
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return writeError(c, h.Logger, err)
		}
	default:
		return fail(c, http.StatusBadRequest, "validation_failed", "provide Authorization header or refresh_token")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  id.Subject,
		"email":    id.Email,
		"role":     id.Role,
		"provider": id.Provider,
	})
}
