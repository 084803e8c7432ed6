package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cryptvault/api/internal/core/domain"
)

// AccessCookieName carries the access token for browser clients.
const AccessCookieName = "cryptvault_access_token"

// TokenValidator resolves an access token to a live identity.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (*domain.UserClaims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
	logger    *slog.Logger
}

func NewAuthMiddleware(validator TokenValidator, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, logger: logger}
}

func (m *AuthMiddleware) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := m.validator.ValidateAccessToken(r.Context(), tokenString)
		if err != nil {
			if errors.Is(err, domain.ErrAccountSuspended) {
				writeError(w, http.StatusForbidden, "Account suspended")
				return
			}
			m.logger.Debug("rejected access token", slog.String("error", err.Error()))
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken prefers the Authorization header and falls back to the cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(AccessCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message": "` + message + `"}`))
}
