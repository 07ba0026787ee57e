package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/security/auth"
)

type ClaimsContextKey struct{}
type PlatformContextKey struct{}

// Authenticate extracts and verifies the bearer token, attaching claims to
// the request context. It performs no database lookup: downstream handlers
// trust the claims unless they explicitly re-query the store. Missing,
// expired, tampered, and malformed tokens are indistinguishable to the
// client (uniform 401).
func Authenticate(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				unauthorized(w)
				return
			}

			claims, err := tm.Verify(tokenString)
			if err != nil {
				log.Info("token verification failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, PlatformContextKey{}, claims.PlatformID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated callers below ADMIN. Must run after
// Authenticate.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, func(role domain.Role) bool { return role.IsAdmin() }, "admins only")
}

// RequireSuperAdmin rejects everyone except SUPER_ADMIN. Must run after
// Authenticate.
func RequireSuperAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, func(role domain.Role) bool { return role == domain.RoleSuperAdmin }, "super admins only")
}

func requireRole(log *slog.Logger, allowed func(domain.Role) bool, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				unauthorized(w)
				return
			}
			if !allowed(claims.Role) {
				log.Warn("access denied",
					slog.String("user_id", claims.UserID),
					slog.String("role", string(claims.Role)),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"access denied: `+msg+`"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"error":"invalid or missing token"}`, http.StatusUnauthorized)
}

// GetClaimsFromContext returns the verified claims, or nil outside an
// authenticated request.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

// GetPlatformFromContext returns the caller's platform ID, or "".
func GetPlatformFromContext(ctx context.Context) string {
	if p := ctx.Value(PlatformContextKey{}); p != nil {
		return p.(string)
	}
	return ""
}
