package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/middleware"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/service"
)

// AuthHandler handles signup, login, the public platform listing, and the
// authenticated profile lookup.
type AuthHandler struct {
	authService     *service.AuthService
	platformService *service.PlatformService
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, platformService *service.PlatformService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService:     authService,
		platformService: platformService,
		logger:          logger,
	}
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Platform string `json:"platform"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

// SignupResponse wraps the created profile with a confirmation message.
type SignupResponse struct {
	Message string              `json:"message"`
	User    service.UserProfile `json:"user"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode signup request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	profile, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.FullName, req.Platform)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{
		Message: "account created, awaiting admin approval",
		User:    *profile,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password, req.Platform)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Platforms handles GET /api/auth/platforms (public)
func (h *AuthHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.platformService.ListActive(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, platforms)
}

// Profile handles GET /api/auth/profile. It re-queries the store, so a
// role or status change made after the token was issued is visible here.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	profile, err := h.authService.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
