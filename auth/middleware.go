package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const UsernameKey contextKey = "username"

// Middleware rejects requests with an absent, malformed or expired bearer
// token before any handler logic runs, and injects the resolved username
// into the request context for downstream layers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "authorization token is missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ValidateToken(tokenStr)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UsernameFromContext resolves the identity injected by Middleware. The
// boolean is false on unauthenticated contexts, which only happens when a
// handler is mounted outside the middleware by mistake.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}
