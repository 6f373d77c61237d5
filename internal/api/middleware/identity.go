package middleware

import (
	"context"
	"net/http"

	"github.com/ValHeil/kartensets/internal/api/response"
)

type contextKey string

const userIDKey contextKey = "userID"

// RequireUser extracts the acting identity from the X-User-ID header.
// The id is client-minted and taken at face value; this boundary is
// deliberately unauthenticated (see the reconcile package) and exists
// so real authentication can replace it without touching handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			response.BadRequest(w, "missing X-User-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the acting user id from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
