package domain

import (
	"time"
)

// Membership links a user to a channel with a role.
type Membership struct {
	ChannelID int64     `json:"channel_id"`
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is a member's capability within a channel. Read-only members receive
// events but may not produce messages.
type Role string

const (
	RoleReadWrite Role = "read_write"
	RoleReadOnly  Role = "read_only"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleReadWrite || r == RoleReadOnly
}
