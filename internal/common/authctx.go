package common

import "context"

type ctxKey string

const (
	userIDKey ctxKey = "auth/user-id"
	adminKey  ctxKey = "auth/admin"
)

// WithUserID stores the authenticated buyer identifier on the provided context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID extracts the authenticated buyer identifier from the context if present.
// An empty identifier counts as absent.
func UserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// RequireUserID returns the authenticated buyer or an UNAUTHORIZED error.
func RequireUserID(ctx context.Context) (string, error) {
	id, ok := UserID(ctx)
	if !ok {
		return "", Unauthorized("")
	}
	return id, nil
}

// WithAdmin marks the request as made by an administrator.
func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// IsAdmin reports whether the caller carries the admin role.
func IsAdmin(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	admin, _ := ctx.Value(adminKey).(bool)
	return admin
}
