package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

// UserIDKey is the context key under which the authenticated user id is
// stored.
const UserIDKey contextKey = "userID"

// userIDHeader is set by the upstream gateway after authentication.
// Requests reach this service only through the gateway, which strips the
// header from anything client-supplied.
const userIDHeader = "X-User-ID"

// Identity extracts the authenticated user id forwarded by the gateway and
// places it on the request context. Requests without a valid id are
// rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(userIDHeader)
		if raw == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFrom returns the authenticated user id from the context.
func UserIDFrom(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
