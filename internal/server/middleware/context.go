// Package middleware holds the HTTP middleware chain of the API server:
// request identity, auth, auditing, and telemetry.
package middleware

import "context"

type contextKey struct{ name string }

var (
	userIDKey      = contextKey{"user_id"}
	tokenSecretKey = contextKey{"token_secret"}
	clientIPKey    = contextKey{"client_ip"}
)

// WithIdentity returns a context with the authenticated user id and the
// presented token secret set. Handlers read these via GetUserID and
// GetTokenSecret.
func WithIdentity(ctx context.Context, userID int64, tokenSecret string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, tokenSecretKey, tokenSecret)
	return ctx
}

// GetUserID returns the user id from context and true if set; otherwise 0, false.
func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

// GetTokenSecret returns the token secret from context and true if set; otherwise "", false.
func GetTokenSecret(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenSecretKey).(string)
	return v, ok
}

// WithClientIP returns a context with the resolved client IP set.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ContextClientIP returns the client IP stored by StoreClientIP, or "unknown".
// Shaped as an audit.IPExtractor.
func ContextClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
