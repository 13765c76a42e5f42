package middleware

import (
	"context"
	"net/http"
	"strings"

	"serenity/internal/models"
)

type contextKey string

const userIDKey contextKey = "userID"

// ResolveUser stores the caller's free-text user_id query parameter in the
// request context, defaulting to the anonymous user. It identifies, it does
// not authenticate.
func ResolveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			userID = models.AnonymousUser
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the user resolved by ResolveUser, or the anonymous user.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok && v != "" {
		return v
	}
	return models.AnonymousUser
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
