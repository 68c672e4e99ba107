package domain

import (
	"encoding/json"
	"time"
)

// Event is one observability event produced by the HTTP layer. It is
// serialized as JSON onto the Kafka audit topic and re-labeled by the worker
// when pushed to Loki.
type Event struct {
	UserID    int64           `json:"user_id,omitempty"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
