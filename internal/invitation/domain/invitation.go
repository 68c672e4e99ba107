package domain

import "time"

// Invitation invites a user into a channel. The invitee sees it as a
// NewInvitation event; on acceptance the inviter is notified and the invitee
// becomes a read-write member.
type Invitation struct {
	ID        string    `json:"id"`
	ChannelID int64     `json:"channel_id"`
	InviterID int64     `json:"inviter_id"`
	InviteeID int64     `json:"invitee_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)
