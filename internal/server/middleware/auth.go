package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"channel-chat/internal/token"
)

const bearerPrefix = "bearer "

// TokenValidator validates a bearer token secret and refreshes its activity
// timestamp. Implemented by token.Authority.
type TokenValidator interface {
	Validate(secret string) (token.Token, bool)
}

// Auth returns middleware that validates the Bearer token from the
// Authorization header and sets the user id in context for protected routes.
// Missing, malformed, unknown, and expired tokens all get the same 401 so
// nothing about token state leaks to callers.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := extractBearer(r)
			if secret == "" {
				unauthorized(w)
				return
			}
			tok, ok := tokens.Validate(secret)
			if !ok {
				unauthorized(w)
				return
			}
			ctx := WithIdentity(r.Context(), tok.UserID, secret)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid authorization"})
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

// StoreClientIP resolves the client IP once per request and stores it in the
// context for code that only sees a context (e.g. the audit logger).
func StoreClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientIP(r.Context(), ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the client IP from X-Forwarded-For, X-Real-IP, or the
// remote address, or "unknown".
func ClientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-Ip")); s != "" {
		return s
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
