// Server runs the chat API: HTTP endpoints, the live event stream, and the
// keepalive loop. Requires DATABASE_URL; see .env.example for the full set.
package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channel-chat/internal/audit"
	auditrepo "channel-chat/internal/audit/repository"
	"channel-chat/internal/authz"
	channelrepo "channel-chat/internal/channel/repository"
	chatservice "channel-chat/internal/chat/service"
	"channel-chat/internal/config"
	"channel-chat/internal/db"
	"channel-chat/internal/event"
	identityservice "channel-chat/internal/identity/service"
	invitationrepo "channel-chat/internal/invitation/repository"
	"channel-chat/internal/live"
	membershiprepo "channel-chat/internal/membership/repository"
	messagerepo "channel-chat/internal/message/repository"
	"channel-chat/internal/security"
	"channel-chat/internal/server"
	"channel-chat/internal/server/middleware"
	"channel-chat/internal/telemetry"
	telemetryotel "channel-chat/internal/telemetry/otel"
	"channel-chat/internal/telemetry/producer"
	"channel-chat/internal/token"
	userrepo "channel-chat/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "channel-chat", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	// Telemetry goes to Kafka when brokers are configured; otherwise events
	// are emitted as OTel log records (a no-op when OTLP is also unset).
	var telemetrySink telemetry.EventEmitter
	if kp, err := producer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic); err != nil {
		log.Fatalf("kafka: %v", err)
	} else if kp != nil {
		telemetrySink = kp
		defer kp.Close()
	} else {
		telemetrySink = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}

	users := userrepo.NewPostgresRepository(conn)
	channels := channelrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	messages := messagerepo.NewPostgresRepository(conn)
	invitations := invitationrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)

	tokens := token.NewAuthority(cfg.AbsoluteTTL(), cfg.RollingTTL(), cfg.MaxSessions)
	registry := live.NewRegistry()
	router := live.NewRouter(registry, cfg.KeepAlive())
	gate := authz.NewGate(memberships)
	seq := event.NewSequence()

	auth := identityservice.NewAuthService(users, security.NewHasher(cfg.BcryptCost), tokens)
	chat := chatservice.NewChatService(channels, messages, memberships, invitations, users, gate, router, seq)

	go router.Run(ctx)

	handler := server.NewRouter(server.Deps{
		Auth:          auth,
		Chat:          chat,
		Tokens:        tokens,
		Registry:      registry,
		EmitterBuffer: cfg.EmitterBuffer,
		AuditRepo:     audits,
		AuditLogger:   audit.NewLogger(audits, middleware.ContextClientIP),
		Telemetry:     telemetrySink,
		HealthPinger:  conn,
	})

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		// No write timeout: SSE responses are long-lived.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
		// Request contexts derive from ctx so open event streams end on
		// shutdown instead of pinning Shutdown until its deadline.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Give in-flight async telemetry emits time to complete before the
	// providers go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
