package userctx

import "context"

type contextKey string

const userIDContextKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated owner user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserID extracts the owner user id from the context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

// OwnerOrDefault returns the authenticated owner user id, or "default"
// when the server runs with AUTH_MODE=none.
func OwnerOrDefault(ctx context.Context) string {
	if userID, ok := GetUserID(ctx); ok && userID != "" {
		return userID
	}
	return "default"
}
