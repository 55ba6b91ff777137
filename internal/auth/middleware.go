package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"evenza/internal/config"
	"evenza/internal/logger"
)

type contextKey string

const identityKey contextKey = "identity"

// Middleware verifies a bearer token or the auth cookie and injects the
// identity into the request context. Requests without a valid token get 401.
func Middleware(cfg config.AuthConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := tokenFromRequest(r, cfg.CookieName)
			if err != nil {
				log.LogSecurity("UNAUTHENTICATED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			identity, err := VerifyToken(cfg, raw)
			if err != nil {
				log.LogSecurity("UNAUTHENTICATED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest prefers the Authorization header, falls back to the cookie.
func tokenFromRequest(r *http.Request, cookieName string) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", fmt.Errorf("authorization header format must be 'Bearer {token}'")
		}
		return parts[1], nil
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingToken
	}
	return cookie.Value, nil
}

// FromContext returns the identity injected by Middleware.
func FromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// WithIdentity is used by handler tests to seed a request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
