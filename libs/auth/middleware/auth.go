package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/coursehub/backend/libs/auth/service"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Principal, error)
}

// AuthMiddleware validates the access token of any role and stores the principal in the context
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return authenticate(validator, "")
}

// extractToken reads the token from the Authorization header, then from the access_token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// authenticate validates the token and, when requiredRole is not empty, the role it carries
func authenticate(validator TokenValidator, requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			principal, err := validator.ValidateAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if requiredRole != "" && principal.Role != requiredRole {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *principal)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// WithPrincipal stores the authenticated principal in the context
func WithPrincipal(ctx context.Context, principal service.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(ctx context.Context) (service.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(service.Principal)
	return principal, ok
}

// GetUserID retrieves the authenticated principal ID from context
func GetUserID(ctx context.Context) (int, bool) {
	principal, ok := GetPrincipal(ctx)
	return principal.ID, ok
}
