package handler

import (
	"log/slog"
	"net/http"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/middleware"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/service"
)

// AdminHandler handles the privileged user- and platform-management
// endpoints. Routing already guarantees an authenticated admin; the
// services run the policy engine for everything finer-grained.
type AdminHandler struct {
	adminService    *service.AdminService
	platformService *service.PlatformService
	logger          *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, platformService *service.PlatformService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		adminService:    adminService,
		platformService: platformService,
		logger:          logger,
	}
}

// UpdateUserRequest enumerates the only fields an admin mutation accepts.
// Unknown fields are rejected at decode time.
type UpdateUserRequest struct {
	Status *domain.Status `json:"status"`
	Role   *domain.Role   `json:"role"`
}

// CreateUserRequest represents an admin user-creation request.
type CreateUserRequest struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	FullName string        `json:"fullName"`
	Role     domain.Role   `json:"role"`
	Status   domain.Status `json:"status"`
	Platform string        `json:"platform"`
}

// ResetPasswordRequest represents an admin password reset.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// CreatePlatformRequest represents a platform-creation request.
type CreatePlatformRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

// UpdatePlatformRequest enumerates the mutable platform fields.
type UpdatePlatformRequest struct {
	Name        *string `json:"name"`
	Domain      *string `json:"domain"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), caller, r.URL.Query().Get("platform"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /api/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req CreateUserRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), caller, service.CreateUserInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Role:         req.Role,
		Status:       req.Status,
		PlatformCode: req.Platform,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PATCH /api/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req UpdateUserRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), caller, r.PathValue("id"), domain.UserUpdate{
		Status: req.Status,
		Role:   req.Role,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ResetPassword handles POST /api/admin/users/{id}/reset-password
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req ResetPasswordRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.adminService.ResetPassword(r.Context(), caller, r.PathValue("id"), req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password reset successfully"})
}

// ListPlatforms handles GET /api/admin/platforms (SUPER_ADMIN only)
func (h *AdminHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	platforms, err := h.platformService.ListAll(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, platforms)
}

// CreatePlatform handles POST /api/admin/platforms (SUPER_ADMIN only)
func (h *AdminHandler) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req CreatePlatformRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	platform, err := h.platformService.Create(r.Context(), caller, service.CreatePlatformInput{
		Code:        req.Code,
		Name:        req.Name,
		Domain:      req.Domain,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, platform)
}

// UpdatePlatform handles PATCH /api/admin/platforms/{id} (SUPER_ADMIN only)
func (h *AdminHandler) UpdatePlatform(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req UpdatePlatformRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	platform, err := h.platformService.Update(r.Context(), caller, r.PathValue("id"), domain.PlatformUpdate{
		Name:        req.Name,
		Domain:      req.Domain,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, platform)
}

// SetMasterPlatform handles POST /api/admin/platforms/{id}/master
// (SUPER_ADMIN only)
func (h *AdminHandler) SetMasterPlatform(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	platform, err := h.platformService.SetMaster(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, platform)
}

func callerFromContext(r *http.Request) (security.Caller, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return security.Caller{}, false
	}
	return security.Caller{
		UserID:     claims.UserID,
		Role:       claims.Role,
		PlatformID: claims.PlatformID,
	}, true
}
