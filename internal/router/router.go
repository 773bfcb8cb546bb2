package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/showtix/ticketing-server/internal/handler"
	"github.com/showtix/ticketing-server/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check and the prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers authentication routes.  Unauthenticated operations
// live under /v1/auth; logout and me require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string, validator middleware.AccessValidator, sessions middleware.SessionTokens) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/signin", a.Signin)
	g.POST("/refresh", a.Refresh)

	guarded := e.Group("/v1")
	guarded.Use(middleware.Authenticator(accessSecret, validator, sessions))
	guarded.POST("/auth/logout", a.Logout)
	guarded.GET("/me", a.Me)
}

// RegisterSync registers the catalog sync trigger and the shop statistics
// endpoint.  Both require an authenticated caller; the sync trigger is
// additionally limited to known roles.
func RegisterSync(e *echo.Echo, s *handler.SyncHandler, sh *handler.ShopHandler, accessSecret string, validator middleware.AccessValidator, sessions middleware.SessionTokens) {
	g := e.Group("/v1")
	g.Use(middleware.Authenticator(accessSecret, validator, sessions))
	g.POST("/sync/:shopId", s.SyncShop, middleware.RequireRole("admin", "user"))
	g.GET("/shops/:shopId/stats", sh.Stats)
}

// RegisterPayments registers the payment gateway webhook.  The gateway
// authenticates with an HMAC signature instead of a bearer token, so the
// route stays outside the auth middleware.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler) {
	e.POST("/v1/payments/webhook", p.Webhook)
}
