// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	channeldomain "channel-chat/internal/channel/domain"
	channelrepo "channel-chat/internal/channel/repository"
	"channel-chat/internal/config"
	"channel-chat/internal/db"
	membershipdomain "channel-chat/internal/membership/domain"
	membershiprepo "channel-chat/internal/membership/repository"
	messagedomain "channel-chat/internal/message/domain"
	messagerepo "channel-chat/internal/message/repository"
	"channel-chat/internal/security"
	userdomain "channel-chat/internal/user/domain"
	userrepo "channel-chat/internal/user/repository"
)

const (
	devEmail    = "dev@example.com"
	devPassword = "password123"
	memberEmail = "member@example.com"
	devChannel  = "general"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	channels := channelrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	messages := messagerepo.NewPostgresRepository(conn)

	if existing, err := users.GetByEmail(ctx, devEmail); err != nil {
		log.Fatalf("seed: %v", err)
	} else if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devEmail)
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}

	now := time.Now().UTC()
	dev := &userdomain.User{Username: "dev", Email: devEmail, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err := users.Create(ctx, dev); err != nil {
		log.Fatalf("seed: create dev user: %v", err)
	}
	member := &userdomain.User{Username: "member", Email: memberEmail, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err := users.Create(ctx, member); err != nil {
		log.Fatalf("seed: create member user: %v", err)
	}

	ch := &channeldomain.Channel{Name: devChannel, CreatedBy: dev.ID, CreatedAt: now}
	if err := channels.Create(ctx, ch); err != nil {
		log.Fatalf("seed: create channel: %v", err)
	}
	for _, m := range []*membershipdomain.Membership{
		{ChannelID: ch.ID, UserID: dev.ID, Role: membershipdomain.RoleReadWrite, CreatedAt: now},
		{ChannelID: ch.ID, UserID: member.ID, Role: membershipdomain.RoleReadOnly, CreatedAt: now},
	} {
		if err := memberships.Add(ctx, m); err != nil {
			log.Fatalf("seed: add membership: %v", err)
		}
	}

	msg := &messagedomain.Message{ChannelID: ch.ID, AuthorID: dev.ID, Body: "welcome to " + devChannel, CreatedAt: now}
	if err := messages.Create(ctx, msg); err != nil {
		log.Fatalf("seed: create message: %v", err)
	}

	log.Printf("seed: created users %s / %s (password %s), channel %q", devEmail, memberEmail, devPassword, devChannel)
}
