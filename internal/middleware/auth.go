// Package middleware provides shared request processing for handlers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/showtix/ticketing-server/internal/auth"
	"github.com/showtix/ticketing-server/internal/session"
)

// SessionIDCookie is the cookie carrying the server-side session id for
// clients that authenticate through the session channel.
const SessionIDCookie = "sid"

// AccessValidator cross-checks a signature-verified token against the
// currently stored hash for its subject.
type AccessValidator interface {
	ValidateAccessToken(ctx context.Context, userID, accessToken string) bool
}

// SessionTokens reads the token pair of a server-side session.  A nil
// implementation disables the session fallback channel.
type SessionTokens interface {
	Tokens(ctx context.Context, sid string) (*session.Tokens, error)
}

// Authenticator returns an Echo middleware gating every route it wraps.
// The candidate token comes from the Authorization header first, then from
// the server-side session named by the sid cookie.  A token must pass two
// checks: its signature against the access secret, and its hash against
// the one currently stored for the subject — so a logout or a later login
// revokes it even while the signature stays valid.  Routes that should be
// public are simply registered outside the guarded group.
func Authenticator(accessSecret string, validator AccessValidator, sessions SessionTokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromHeader(c)
			if token == "" {
				token = tokenFromSession(c, sessions)
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized,
					echo.Map{"error": "access token not found in header or session"})
			}

			claims, err := auth.ParseToken(accessSecret, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized,
					echo.Map{"error": "invalid access token signature"})
			}

			if !validator.ValidateAccessToken(c.Request().Context(), claims.UserID, token) {
				return c.JSON(http.StatusUnauthorized,
					echo.Map{"error": "token is invalid or revoked"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}

func tokenFromHeader(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func tokenFromSession(c echo.Context, sessions SessionTokens) string {
	if sessions == nil {
		return ""
	}
	cookie, err := c.Cookie(SessionIDCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	tokens, err := sessions.Tokens(c.Request().Context(), cookie.Value)
	if err != nil || tokens == nil {
		return ""
	}
	return tokens.AccessToken
}
