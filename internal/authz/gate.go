// Package authz scopes event delivery to channel members. The gate holds no
// state of its own; it is a read-through over membership persistence.
package authz

import (
	"context"

	"channel-chat/internal/membership/domain"
)

// MembershipSource is the minimal membership lookup the gate needs.
type MembershipSource interface {
	ListMemberIDs(ctx context.Context, channelID int64) ([]int64, error)
	Get(ctx context.Context, channelID, userID int64) (*domain.Membership, error)
}

// Gate resolves which users are entitled to receive a channel's events and
// what role they hold there.
type Gate struct {
	memberships MembershipSource
}

// NewGate returns a Gate reading from the given membership source.
func NewGate(memberships MembershipSource) *Gate {
	return &Gate{memberships: memberships}
}

// RecipientsFor returns every user id currently a member of the channel, any
// role. Read-only members receive events; they are only barred from producing.
func (g *Gate) RecipientsFor(ctx context.Context, channelID int64) ([]int64, error) {
	return g.memberships.ListMemberIDs(ctx, channelID)
}

// RecipientsExcluding returns the channel's members without excludedUserID,
// for events where the acting user must not be notified of their own action.
func (g *Gate) RecipientsExcluding(ctx context.Context, channelID, excludedUserID int64) ([]int64, error) {
	ids, err := g.memberships.ListMemberIDs(ctx, channelID)
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if id != excludedUserID {
			out = append(out, id)
		}
	}
	return out, nil
}

// RoleOf returns the user's role in the channel and whether they are a member.
func (g *Gate) RoleOf(ctx context.Context, channelID, userID int64) (domain.Role, bool, error) {
	m, err := g.memberships.Get(ctx, channelID, userID)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	return m.Role, true, nil
}
