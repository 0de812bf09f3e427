package auth

import "context"

type contextKey string

const userIDContextKey contextKey = "userID"

// ContextWithUserID stores the logged in user ID in the context
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the logged in user ID, set by the auth middleware
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}
