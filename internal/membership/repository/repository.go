package repository

import (
	"context"

	"channel-chat/internal/membership/domain"
)

// Repository defines persistence for channel memberships.
type Repository interface {
	// Get returns the membership for (channelID, userID), or nil if the user
	// is not a member.
	Get(ctx context.Context, channelID, userID int64) (*domain.Membership, error)
	// ListMemberIDs returns the user ids of every current member of the channel.
	ListMemberIDs(ctx context.Context, channelID int64) ([]int64, error)
	// ListChannelIDsByUser returns the channel ids the user belongs to.
	ListChannelIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	// Add inserts the membership. No-op if it already exists.
	Add(ctx context.Context, m *domain.Membership) error
	// Remove deletes the membership. Idempotent; not an error if absent.
	Remove(ctx context.Context, channelID, userID int64) error
}
