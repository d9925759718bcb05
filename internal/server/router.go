// Package server assembles the gin engine: middleware chain, public routes
// and the authenticated and admin route groups.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medicloud-backend/internal/accounts"
	"medicloud-backend/internal/audit"
	"medicloud-backend/internal/session"
	"medicloud-backend/internal/shared/auth"
	"medicloud-backend/internal/shared/config"
	"medicloud-backend/internal/shared/server/middleware"
	"medicloud-backend/internal/shared/server/respond"
	"medicloud-backend/internal/vault"
)

// Deps are the wired handlers the router mounts.
type Deps struct {
	Config   config.Config
	Signer   *auth.Signer
	Recorder *audit.Recorder
	Session  *session.Handler
	Vault    *vault.Handler
	Accounts *accounts.Handler
	Audit    *audit.Handler
}

// NewRouter builds the gin engine with the full route tree.
func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(d.Config.CORSAllowOrigins),
		middleware.Metrics(),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/estado", func(c *gin.Context) {
		respond.OK(c, gin.H{"status": "ok"})
	})

	limiter := middleware.NewLoginLimiter(d.Config.LoginWindow, d.Config.LoginMaxAttempts, nil)
	public := api.Group("", middleware.LoginRateLimit(limiter))
	d.Session.RegisterRoutes(public)

	authed := api.Group("", middleware.Auth(d.Signer))
	d.Vault.RegisterRoutes(authed)

	admin := authed.Group("/admin", middleware.RequireAdmin(d.Recorder, audit.ActionAdminPanel, audit.OutcomeDeniedRole))
	d.Accounts.RegisterRoutes(admin)
	d.Audit.RegisterRoutes(admin)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}
