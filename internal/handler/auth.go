package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/ticketing-server/internal/auth"
	"github.com/showtix/ticketing-server/internal/middleware"
	"github.com/showtix/ticketing-server/internal/session"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth     *auth.Service
	Sessions *session.Store // nil when redis is unavailable
}

func NewAuthHandler(a *auth.Service, s *session.Store) *AuthHandler {
	return &AuthHandler{Auth: a, Sessions: s}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Signup: create user and return a token pair immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tokens, err := h.Auth.Signup(ctx, req)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsTaken) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "credentials already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	return c.JSON(http.StatusCreated, tokens)
}

// Signin: verify credentials and return a new pair.  With ?session=1 the
// pair is also parked in redis behind an httpOnly session cookie, so
// browser clients never hold raw tokens.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tokens, err := h.Auth.Login(ctx, req)
	if err != nil {
		if errors.Is(err, auth.ErrAccessDenied) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signin failed"})
	}

	if h.Sessions != nil && c.QueryParam("session") == "1" {
		sid := session.NewSessionID()
		if err := h.Sessions.SetTokens(ctx, sid, session.Tokens{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session store failed"})
		}
		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionIDCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return c.JSON(http.StatusOK, tokens)
}

// Refresh: rotate the pair using a valid refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tokens, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, auth.ErrAccessDenied) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout: clear stored token hashes for the current user (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	if h.Sessions != nil {
		if cookie, err := c.Cookie(middleware.SessionIDCookie); err == nil && cookie.Value != "" {
			_ = h.Sessions.Clear(ctx, cookie.Value)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get("user_id"),
		"username": c.Get("username"),
		"role":     c.Get("role"),
	})
}
