package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse wraps a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError converts a service error into the fixed status table. Errors
// outside the taxonomy become an opaque 500: nothing internal leaks to the
// client.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("unexpected error", slog.String("error", err.Error()))
		writeJSON(w, status, ErrorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrPlatformNotFound),
		errors.Is(err, domain.ErrPlatformInactive):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountPending),
		errors.Is(err, domain.ErrAccountBlocked),
		errors.Is(err, domain.ErrRoleForbidden),
		errors.Is(err, domain.ErrTenantIsolation),
		errors.Is(err, domain.ErrSelfAction):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeStrict parses a JSON body, rejecting unknown fields. Used for the
// admin mutation endpoints so stray fields fail loudly instead of being
// silently dropped.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
