package handler

import (
	"log/slog"
	"net/http"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/middleware"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/service"
)

// APIKeyHandler handles the self-service API key endpoints.
type APIKeyHandler struct {
	apiKeyService *service.APIKeyService
	logger        *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(apiKeyService *service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyHandler{apiKeyService: apiKeyService, logger: logger}
}

// SetAPIKeyRequest represents a store-key request.
type SetAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// Get handles GET /api/api-key/gemini
func (h *APIKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	status, err := h.apiKeyService.Get(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Set handles POST /api/api-key/gemini
func (h *APIKeyHandler) Set(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req SetAPIKeyRequest
	if err := decodeStrict(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.apiKeyService.Set(r.Context(), claims.UserID, req.APIKey); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "api key saved",
		"hasApiKey": true,
	})
}

// Delete handles DELETE /api/api-key/gemini
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	if err := h.apiKeyService.Delete(r.Context(), claims.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "api key removed",
		"hasApiKey": false,
	})
}
