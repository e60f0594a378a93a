package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/juanjparedez/mundobl/internal/httputil"
	"github.com/juanjparedez/mundobl/internal/models"
)

type contextKey string

const (
	ContextUser contextKey = "user"
)

type ContextUserData struct {
	Subject string
	Email   string
	Role    models.Role
}

type Middleware struct {
	verifier *Verifier
}

func NewMiddleware(v *Verifier) *Middleware {
	return &Middleware{verifier: v}
}

// Require admits requests carrying a valid token whose role is one of roles.
func (m *Middleware) Require(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.verifier.Verify(extractToken(r))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrMissingToken) {
					msg = "missing authorization"
				}
				httputil.WriteError(w, http.StatusUnauthorized, msg)
				return
			}
			if !CheckPermission(claims.Role, roles...) {
				httputil.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUser, ContextUserData{
				Subject: claims.Subject,
				Email:   claims.Email,
				Role:    claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) *ContextUserData {
	if v, ok := ctx.Value(ContextUser).(ContextUserData); ok {
		return &v
	}
	return nil
}

// extractToken reads the bearer header, falling back to ?token= for
// websocket clients that cannot set headers.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
