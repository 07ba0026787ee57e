package handler

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/middleware"
)

// NewRouter assembles the full route table. Public routes carry no
// middleware; everything else is wrapped per group, so the token check
// never runs on the login path and the admin gates never run on
// self-service routes.
func NewRouter(
	authHandler *AuthHandler,
	adminHandler *AdminHandler,
	passwordHandler *PasswordHandler,
	apiKeyHandler *APIKeyHandler,
	healthHandler *HealthHandler,
	tokenManager *auth.TokenManager,
	log *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	authenticated := middleware.Authenticate(tokenManager, log)
	admin := func(h http.Handler) http.Handler {
		return authenticated(middleware.RequireAdmin(log)(h))
	}
	superAdmin := func(h http.Handler) http.Handler {
		return authenticated(middleware.RequireSuperAdmin(log)(h))
	}

	// Public
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/platforms", authHandler.Platforms)
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Authenticated self-service
	mux.Handle("GET /api/auth/profile", authenticated(http.HandlerFunc(authHandler.Profile)))
	mux.Handle("POST /api/password/change", authenticated(http.HandlerFunc(passwordHandler.Change)))
	mux.Handle("GET /api/api-key/gemini", authenticated(http.HandlerFunc(apiKeyHandler.Get)))
	mux.Handle("POST /api/api-key/gemini", authenticated(http.HandlerFunc(apiKeyHandler.Set)))
	mux.Handle("DELETE /api/api-key/gemini", authenticated(http.HandlerFunc(apiKeyHandler.Delete)))

	// Admin
	mux.Handle("GET /api/admin/users", admin(http.HandlerFunc(adminHandler.ListUsers)))
	mux.Handle("POST /api/admin/users", admin(http.HandlerFunc(adminHandler.CreateUser)))
	mux.Handle("PATCH /api/admin/users/{id}", admin(http.HandlerFunc(adminHandler.UpdateUser)))
	mux.Handle("POST /api/admin/users/{id}/reset-password", admin(http.HandlerFunc(adminHandler.ResetPassword)))

	// Super admin
	mux.Handle("GET /api/admin/platforms", superAdmin(http.HandlerFunc(adminHandler.ListPlatforms)))
	mux.Handle("POST /api/admin/platforms", superAdmin(http.HandlerFunc(adminHandler.CreatePlatform)))
	mux.Handle("PATCH /api/admin/platforms/{id}", superAdmin(http.HandlerFunc(adminHandler.UpdatePlatform)))
	mux.Handle("POST /api/admin/platforms/{id}/master", superAdmin(http.HandlerFunc(adminHandler.SetMasterPlatform)))

	return mux
}
