package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/auth"
	"github.com/baharkarakas/servicehub-backend/internal/models"
)

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

// bearer reads the token from the Authorization header, or from ?token= for EventSource clients.
func bearer(r *http.Request) string {
	ah := r.Header.Get("Authorization")
	if len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return r.URL.Query().Get("token")
}

// Auth requires a valid access token and stores its claims in the request context.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			httpx.WriteError(w, apperr.Unauthorized("missing bearer token"))
			return
		}
		claims, err := m.TM.ParseAccess(token)
		if err != nil {
			httpx.WriteError(w, apperr.Unauthorized("invalid access token"))
			return
		}
		ctx := WithUser(r.Context(), UserCtx{
			UserID: claims.UserID,
			Role:   models.Role(claims.Role),
			Name:   claims.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
