// Package token implements the bearer token authority: issuing, validating,
// and revoking opaque session tokens with a per-user cap and LRU eviction.
package token

import "time"

// Token is an opaque bearer token owned by a single user. The secret is the
// only lookup key; it is never derived from user data.
type Token struct {
	Secret     string
	UserID     int64
	CreatedAt  time.Time
	LastUsedAt time.Time
}
