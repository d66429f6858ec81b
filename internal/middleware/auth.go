package middleware

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = 0

// Auth resolves the authenticated user from the X-User-ID header injected by
// the auth gateway in front of this service. A request without one is
// unauthenticated and the whole operation aborts.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			http.Error(w, "no authenticated user", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id, or "" when the request skipped
// the Auth middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
