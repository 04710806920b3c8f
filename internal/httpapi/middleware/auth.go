package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"vehicle/api/internal/httpapi/contextkeys"
	"vehicle/api/internal/httpapi/response"
	"vehicle/api/internal/models"
	"vehicle/api/internal/security"
)

// TokenVerifier turns a raw bearer token into the caller it identifies.
type TokenVerifier interface {
	Parse(token string) (models.Principal, error)
}

type Auth struct {
	Verifier TokenVerifier
	Logger   logrus.FieldLogger
}

func (a Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			response.Error(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		principal, err := a.Verifier.Parse(token)
		if err != nil {
			if a.Logger != nil && !errors.Is(err, security.ErrMissingToken) {
				a.Logger.WithFields(logrus.Fields{
					"request_id": response.RequestID(r),
					"error":      err.Error(),
				}).Debug("bearer token rejected")
			}
			response.Error(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), contextkeys.Principal, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CurrentPrincipal(r *http.Request) (models.Principal, bool) {
	principal, ok := r.Context().Value(contextkeys.Principal).(models.Principal)
	return principal, ok
}

// RequireRole rejects authenticated callers lacking the realm role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := CurrentPrincipal(r)
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "authentication required")
				return
			}
			if !principal.HasRole(role) {
				response.ErrorWithDetails(w, r, http.StatusForbidden, "role required", map[string]string{"role": role})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(strings.TrimSpace(raw), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
