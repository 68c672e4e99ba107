package domain

import "time"

// AuditLog represents one recorded API action. UserID is 0 for unauthenticated
// actions (e.g. failed logins).
type AuditLog struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
