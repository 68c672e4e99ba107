package domain

import (
	"errors"
	"strings"
	"time"
)

// Message is a single chat message within a channel.
type Message struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channel_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrBodyRequired is returned by Validate for an empty message body.
var ErrBodyRequired = errors.New("message body is required")

// Validate validates the message for persistence.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Body) == "" {
		return ErrBodyRequired
	}
	return nil
}
