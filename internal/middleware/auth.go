// internal/middleware/auth.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/baharkarakas/rentacar-backend/internal/api/httpx"
	"github.com/baharkarakas/rentacar-backend/internal/models"
)

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

type AuthMiddleware struct {
	authn Authenticator
	log   *slog.Logger
}

func NewAuthMiddleware(a Authenticator, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{authn: a, log: log}
}

// Auth: Bearer <JWT(access)>, dev ortamında Bearer dev-<uuid> de geçerli
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])
		if token == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}

		u, err := m.authn.Authenticate(r.Context(), token)
		if err != nil {
			httpx.WriteServiceError(w, r, m.log, err)
			return
		}
		ctx := WithUser(r.Context(), UserCtx{UserID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
