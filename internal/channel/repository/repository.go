package repository

import (
	"context"

	"channel-chat/internal/channel/domain"
)

// Repository defines persistence for channels.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Channel, error)
	// Create persists the channel and fills in the assigned ID.
	Create(ctx context.Context, c *domain.Channel) error
	// Rename changes the channel name. No-op if the channel does not exist.
	Rename(ctx context.Context, id int64, name string) error
}
