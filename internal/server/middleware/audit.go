package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"channel-chat/internal/audit"
	"channel-chat/internal/audit/domain"
	auditrepo "channel-chat/internal/audit/repository"
)

// Audit returns middleware that records an audit log entry after each request.
// skipRoutes is a set of "METHOD pattern" strings to not audit (e.g. the SSE
// stream and healthz). Create is best-effort: failures are logged and the
// response is unaffected. Only authenticated requests are written; the auth
// endpoints log their own entries from the handler where the outcome is known.
func Audit(repo auditrepo.Repository, skipRoutes map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if repo == nil {
				return
			}
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if skipRoutes[r.Method+" "+pattern] {
				return
			}
			userID, ok := GetUserID(r.Context())
			if !ok {
				return
			}
			ar := audit.ParseRoute(r.Method, pattern)
			entry := &domain.AuditLog{
				ID:        uuid.New().String(),
				UserID:    userID,
				Action:    ar.Action,
				Resource:  ar.Resource,
				IP:        ClientIP(r),
				CreatedAt: time.Now().UTC(),
			}
			if err := repo.Create(r.Context(), entry); err != nil {
				log.Printf("audit: failed to create audit log: %v", err)
			}
		})
	}
}
