// Package server assembles the HTTP API: routes, middleware order, and the
// handler dependencies.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"channel-chat/internal/audit"
	audithandler "channel-chat/internal/audit/handler"
	auditrepo "channel-chat/internal/audit/repository"
	chathandler "channel-chat/internal/chat/handler"
	chatservice "channel-chat/internal/chat/service"
	healthhandler "channel-chat/internal/health/handler"
	identityhandler "channel-chat/internal/identity/handler"
	identityservice "channel-chat/internal/identity/service"
	"channel-chat/internal/live"
	livehandler "channel-chat/internal/live/handler"
	"channel-chat/internal/server/middleware"
	"channel-chat/internal/telemetry"
	"channel-chat/internal/token"
)

// Deps holds the service dependencies for the HTTP handlers.
type Deps struct {
	// Auth is the auth service for register/login/logout.
	Auth *identityservice.AuthService
	// Chat is the chat service behind the channel, message, member,
	// invitation, and profile routes.
	Chat *chatservice.ChatService
	// Tokens validates bearer tokens for the protected routes.
	Tokens *token.Authority
	// Registry tracks live emitters for the event stream.
	Registry *live.Registry
	// EmitterBuffer is the per-connection frame buffer for SSE emitters.
	EmitterBuffer int
	// AuditRepo persists audit entries; nil disables auditing.
	AuditRepo auditrepo.Repository
	// AuditLogger records auth events with explicit actions; may be nil.
	AuditLogger audit.AuditLogger
	// Telemetry receives http_request events; nil disables the pipeline.
	Telemetry telemetry.EventEmitter
	// HealthPinger is pinged by /healthz (e.g. *sql.DB); may be nil.
	HealthPinger healthhandler.Pinger
}

// NewRouter builds the chi router. Middleware order is recovery, tracing,
// telemetry, then per-group auth and audit: the audit middleware runs inside
// the auth group so it sees the authenticated identity.
func NewRouter(deps Deps) http.Handler {
	authH := identityhandler.NewAuthHandler(deps.Auth, deps.AuditLogger, deps.Registry)
	chatH := chathandler.NewChatHandler(deps.Chat)
	streamH := livehandler.NewStreamHandler(deps.Registry, deps.EmitterBuffer)
	healthH := healthhandler.NewHealthHandler(deps.HealthPinger)
	auditH := audithandler.NewAuditHandler(deps.AuditRepo)

	// The auth handler logs its own entries where the outcome is known, so
	// the logout route is skipped to avoid double entries.
	skipRoutes := map[string]bool{
		"GET /api/events":       true,
		"GET /healthz":          true,
		"POST /api/auth/logout": true,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StoreClientIP)
	r.Use(middleware.RequestSpan())
	r.Use(middleware.Telemetry(deps.Telemetry, skipRoutes))

	r.Get("/healthz", healthH.Check)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Tokens))
			r.Use(middleware.Audit(deps.AuditRepo, skipRoutes))

			r.Post("/auth/logout", authH.Logout)

			r.Get("/events", streamH.Stream)

			r.Post("/channels", chatH.CreateChannel)
			r.Get("/channels", chatH.ListChannels)
			r.Put("/channels/{channelID}", chatH.RenameChannel)
			r.Post("/channels/{channelID}/messages", chatH.SendMessage)
			r.Get("/channels/{channelID}/messages", chatH.ListMessages)
			r.Post("/channels/{channelID}/members", chatH.AddMember)
			r.Delete("/channels/{channelID}/members/{userID}", chatH.RemoveMember)
			r.Post("/channels/{channelID}/invitations", chatH.Invite)

			r.Get("/invitations", chatH.ListInvitations)
			r.Post("/invitations/{invitationID}/accept", chatH.AcceptInvitation)
			r.Post("/invitations/{invitationID}/decline", chatH.DeclineInvitation)

			r.Put("/users/me/username", chatH.ChangeUsername)

			r.Get("/audit-logs", auditH.ListMine)
		})
	})

	return r
}
