package auth

import "context"

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	UserNameKey contextKey = "user_name"
)

// WithUser returns a context carrying the authenticated user's identity.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRoleKey, role)
}

// UserIDFromContext returns the authenticated user's ID, or "" when the
// request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

// RoleFromContext returns the authenticated user's role, or "" when the
// request is unauthenticated.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}
