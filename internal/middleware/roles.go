package middleware

import (
	"net/http"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/models"
)

// RequireRole allows only the given roles. It must run after Auth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := FromCtx(r.Context())
			if !ok {
				httpx.WriteError(w, apperr.Unauthorized("authentication required"))
				return
			}
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.WriteError(w, apperr.Forbidden("access denied for role "+string(u.Role)))
		})
	}
}
