package repository

import (
	"context"

	"channel-chat/internal/invitation/domain"
)

// Repository defines persistence for invitations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	// ListPendingByInvitee returns the invitee's pending invitations, newest first.
	ListPendingByInvitee(ctx context.Context, inviteeID int64) ([]*domain.Invitation, error)
	Create(ctx context.Context, inv *domain.Invitation) error
	// SetStatus updates the invitation status. No-op if the invitation does not exist.
	SetStatus(ctx context.Context, id string, status domain.Status) error
}
