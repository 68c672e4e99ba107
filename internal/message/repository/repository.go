package repository

import (
	"context"

	"channel-chat/internal/message/domain"
)

// Repository defines persistence for messages.
type Repository interface {
	// Create persists the message and fills in the assigned ID.
	Create(ctx context.Context, m *domain.Message) error
	// ListRecent returns up to limit messages for the channel, newest first.
	ListRecent(ctx context.Context, channelID int64, limit int) ([]*domain.Message, error)
}
