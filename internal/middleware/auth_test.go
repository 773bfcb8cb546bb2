package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showtix/ticketing-server/internal/auth"
	"github.com/showtix/ticketing-server/internal/session"
)

const testSecret = "test-access-secret"

type fakeValidator struct {
	valid map[string]bool // token -> accepted
}

func (f *fakeValidator) ValidateAccessToken(_ context.Context, _, token string) bool {
	return f.valid[token]
}

type fakeSessions struct {
	tokens map[string]*session.Tokens // sid -> pair
}

func (f *fakeSessions) Tokens(_ context.Context, sid string) (*session.Tokens, error) {
	return f.tokens[sid], nil
}

func signTestToken(t *testing.T) string {
	t.Helper()
	raw, err := auth.SignToken(testSecret, "user-1", "alice", "user", time.Minute)
	require.NoError(t, err)
	return raw
}

func doRequest(mw echo.MiddlewareFunc, mutate func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mutate(req)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	})
	_ = handler(c)
	return rec
}

func TestAuthenticatorHeaderChannel(t *testing.T) {
	token := signTestToken(t)
	mw := Authenticator(testSecret, &fakeValidator{valid: map[string]bool{token: true}}, nil)

	rec := doRequest(mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-1")
}

func TestAuthenticatorSessionFallback(t *testing.T) {
	token := signTestToken(t)
	sessions := &fakeSessions{tokens: map[string]*session.Tokens{
		"sid-1": {AccessToken: token},
	}}
	mw := Authenticator(testSecret, &fakeValidator{valid: map[string]bool{token: true}}, sessions)

	rec := doRequest(mw, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionIDCookie, Value: "sid-1"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticatorHeaderWinsOverSession(t *testing.T) {
	headerToken := signTestToken(t)
	sessions := &fakeSessions{tokens: map[string]*session.Tokens{
		"sid-1": {AccessToken: "stale-session-token"},
	}}
	// Only the header token is accepted; if the session token were
	// consulted the request would fail.
	mw := Authenticator(testSecret, &fakeValidator{valid: map[string]bool{headerToken: true}}, sessions)

	rec := doRequest(mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+headerToken)
		r.AddCookie(&http.Cookie{Name: SessionIDCookie, Value: "sid-1"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticatorNoToken(t *testing.T) {
	mw := Authenticator(testSecret, &fakeValidator{}, nil)

	rec := doRequest(mw, func(r *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access token not found in header or session")
}

func TestAuthenticatorUnknownSession(t *testing.T) {
	mw := Authenticator(testSecret, &fakeValidator{}, &fakeSessions{tokens: map[string]*session.Tokens{}})

	rec := doRequest(mw, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionIDCookie, Value: "sid-unknown"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access token not found in header or session")
}

func TestAuthenticatorBadSignature(t *testing.T) {
	foreign, err := auth.SignToken("some-other-secret", "user-1", "alice", "user", time.Minute)
	require.NoError(t, err)
	mw := Authenticator(testSecret, &fakeValidator{valid: map[string]bool{foreign: true}}, nil)

	rec := doRequest(mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+foreign)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid access token signature")
}

func TestAuthenticatorRevokedToken(t *testing.T) {
	token := signTestToken(t)
	// Valid signature but the stored hash no longer matches.
	mw := Authenticator(testSecret, &fakeValidator{valid: map[string]bool{}}, nil)

	rec := doRequest(mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token is invalid or revoked")
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role interface{}) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		_ = handler(c)
		return rec
	}

	assert.Equal(t, http.StatusOK, run("admin").Code)
	assert.Equal(t, http.StatusForbidden, run("user").Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
}
