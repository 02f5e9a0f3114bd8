package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/service"
)

// SessionCookieName is the cookie carrying the admin session token.
const SessionCookieName = "adminToken"

type contextKeyAuth string

// AdminKey is the context key for the authenticated admin.
const AdminKey contextKeyAuth = "auth_admin"

// Authenticate returns an HTTP middleware that validates the request's session
// credential. The token is read from the session cookie first, falling back to
// an Authorization Bearer header for compatibility. On success the resolved
// admin (without credential fields) is attached to the request context.
//
// Expired and malformed tokens both answer 401 but are logged with distinct
// reasons; a store failure during resolution answers 500, not 401.
func Authenticate(authSvc *service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					token = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "No token provided. Authentication required.")
				return
			}

			admin, err := authSvc.ResolveToken(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					logger.Warn("session rejected", "reason", "expired",
						"request_id", GetRequestID(r.Context()))
					writeAuthError(w, http.StatusUnauthorized, "Token expired. Please login again.")
				case errors.Is(err, service.ErrInvalidToken):
					logger.Warn("session rejected", "reason", "invalid",
						"request_id", GetRequestID(r.Context()))
					writeAuthError(w, http.StatusUnauthorized, "Invalid token. Please login again.")
				default:
					logger.Error("session resolution failed", "error", err,
						"request_id", GetRequestID(r.Context()))
					writeAuthError(w, http.StatusInternalServerError, "Authentication error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin extracts the authenticated admin from the context. Returns nil for
// unauthenticated requests.
func GetAdmin(ctx context.Context) *model.Admin {
	if a, ok := ctx.Value(AdminKey).(*model.Admin); ok {
		return a
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Message: message})
}
