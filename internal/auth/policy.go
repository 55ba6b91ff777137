package auth

import (
	"fmt"
	"net/http"

	"evenza/internal/logger"
	"evenza/internal/models"
)

// Authorize is the single role policy shared by every handler: the
// identity must carry one of the required roles. An empty role set
// means any authenticated user.
func Authorize(id *Identity, required ...models.Role) bool {
	if id == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if id.Role == role {
			return true
		}
	}
	return false
}

// RequireRole wraps Authorize as chi middleware. Must run after Middleware.
func RequireRole(log *logger.Logger, required ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}
			if !Authorize(id, required...) {
				log.LogSecurity("FORBIDDEN", fmt.Sprintf("user %s role %s denied %s %s", id.UserID, id.Role, r.Method, r.URL.Path))
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
