package domain

import (
	"errors"
	"strings"
	"time"
)

// Channel is a named chat room. Membership is tracked separately.
type Channel struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNameRequired is returned by Validate for an empty channel name.
var ErrNameRequired = errors.New("channel name is required")

// Validate validates the channel for persistence.
func (c *Channel) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
