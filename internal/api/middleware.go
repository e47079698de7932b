package api

import (
	"net/http"
	"strings"

	"github.com/deepthink-labs/deepthink-engine/internal/auth"
)

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	auth *auth.Service
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{auth: authService}
}

// Authenticate verifies the bearer token from the Authorization header.
// Supports formats: "Bearer <token>" or the raw token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "provide Authorization header with Bearer token")
			return
		}

		if !m.auth.ValidToken(token) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		user := m.auth.User()
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), &user)))
	})
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		// Browsers cannot set headers on websocket upgrades, so the
		// notifications socket passes the token as a query parameter.
		return r.URL.Query().Get("token")
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
