package handler

import (
	"log/slog"
	"net/http"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/middleware"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/service"
)

// PasswordHandler handles the self-service password change.
type PasswordHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewPasswordHandler creates a new password handler
func NewPasswordHandler(authService *service.AuthService, logger *slog.Logger) *PasswordHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordHandler{authService: authService, logger: logger}
}

// ChangePasswordRequest represents a self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Change handles POST /api/password/change
func (h *PasswordHandler) Change(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.authService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password changed successfully"})
}
