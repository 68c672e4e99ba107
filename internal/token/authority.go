package token

import (
	"sync"
	"time"

	"channel-chat/internal/security"
)

// Authority issues, validates, and revokes bearer tokens. Each user holds at
// most maxSessions concurrently stored tokens; issuing beyond the cap evicts
// the least-recently-used token. A token expires at
// min(CreatedAt+absoluteTTL, LastUsedAt+rollingTTL); validation refreshes
// LastUsedAt, so the rolling window slides while the absolute window does not.
//
// Expired tokens are not reaped in the background: they keep occupying a
// session slot until a failed validation removes them or the LRU eviction
// recycles them.
//
// All state is process-local. Locking is per user set plus a secret index
// guarded separately, so logins and validations for distinct users do not
// serialize.
type Authority struct {
	absoluteTTL time.Duration
	rollingTTL  time.Duration
	maxSessions int
	now         func() time.Time

	indexMu  sync.RWMutex
	bySecret map[string]*Token

	usersMu sync.Mutex
	users   map[int64]*sessionSet
}

// sessionSet is one user's tokens. mu also guards LastUsedAt on the tokens it
// holds.
type sessionSet struct {
	mu     sync.Mutex
	tokens []*Token
}

// NewAuthority returns an Authority with the given TTLs and per-user session cap.
func NewAuthority(absoluteTTL, rollingTTL time.Duration, maxSessions int) *Authority {
	return &Authority{
		absoluteTTL: absoluteTTL,
		rollingTTL:  rollingTTL,
		maxSessions: maxSessions,
		now:         time.Now,
		bySecret:    make(map[string]*Token),
		users:       make(map[int64]*sessionSet),
	}
}

// Issue creates and stores a new token for userID. If the user's stored token
// count exceeds the session cap, the least-recently-used tokens are evicted
// until the cap holds. Returns an error only when secret generation fails;
// that error aborts the login, it never degrades to a weaker token.
func (a *Authority) Issue(userID int64) (Token, error) {
	secret, err := security.GenerateSecret()
	if err != nil {
		return Token{}, err
	}
	now := a.now().UTC()
	tok := &Token{Secret: secret, UserID: userID, CreatedAt: now, LastUsedAt: now}

	set := a.userSet(userID)
	set.mu.Lock()
	set.tokens = append(set.tokens, tok)
	var evicted []*Token
	for len(set.tokens) > a.maxSessions {
		i := lruIndex(set.tokens)
		evicted = append(evicted, set.tokens[i])
		set.tokens = append(set.tokens[:i], set.tokens[i+1:]...)
	}
	set.mu.Unlock()

	a.indexMu.Lock()
	a.bySecret[secret] = tok
	for _, e := range evicted {
		delete(a.bySecret, e.Secret)
	}
	a.indexMu.Unlock()

	return *tok, nil
}

// Validate looks up the token for secret. It fails uniformly, returning
// (Token{}, false) for malformed, unknown, and expired secrets, so callers
// cannot distinguish the cases. On success it refreshes LastUsedAt and returns
// a copy of the token.
func (a *Authority) Validate(secret string) (Token, bool) {
	if !security.ValidSecretEncoding(secret) {
		return Token{}, false
	}
	a.indexMu.RLock()
	tok := a.bySecret[secret]
	a.indexMu.RUnlock()
	if tok == nil {
		return Token{}, false
	}

	set := a.userSet(tok.UserID)
	set.mu.Lock()
	defer set.mu.Unlock()

	// The token may have been evicted or revoked between the index read and
	// taking the user lock.
	if !contains(set.tokens, tok) {
		return Token{}, false
	}
	now := a.now().UTC()
	if now.Sub(tok.CreatedAt) > a.absoluteTTL || now.Sub(tok.LastUsedAt) > a.rollingTTL {
		set.tokens = remove(set.tokens, tok)
		a.indexMu.Lock()
		delete(a.bySecret, secret)
		a.indexMu.Unlock()
		return Token{}, false
	}
	tok.LastUsedAt = now
	return *tok, true
}

// Revoke removes the token for secret. Idempotent; reports whether a token was
// actually removed.
func (a *Authority) Revoke(secret string) bool {
	if !security.ValidSecretEncoding(secret) {
		return false
	}
	a.indexMu.RLock()
	tok := a.bySecret[secret]
	a.indexMu.RUnlock()
	if tok == nil {
		return false
	}

	set := a.userSet(tok.UserID)
	set.mu.Lock()
	defer set.mu.Unlock()
	if !contains(set.tokens, tok) {
		return false
	}
	set.tokens = remove(set.tokens, tok)
	a.indexMu.Lock()
	delete(a.bySecret, secret)
	a.indexMu.Unlock()
	return true
}

// userSet returns the session set for userID, creating it on first use.
func (a *Authority) userSet(userID int64) *sessionSet {
	a.usersMu.Lock()
	defer a.usersMu.Unlock()
	set := a.users[userID]
	if set == nil {
		set = &sessionSet{}
		a.users[userID] = set
	}
	return set
}

// lruIndex returns the index of the least-recently-used token. Caller holds
// the set lock and guarantees tokens is non-empty.
func lruIndex(tokens []*Token) int {
	idx := 0
	for i, t := range tokens {
		if t.LastUsedAt.Before(tokens[idx].LastUsedAt) {
			idx = i
		}
	}
	return idx
}

func contains(tokens []*Token, tok *Token) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}

func remove(tokens []*Token, tok *Token) []*Token {
	for i, t := range tokens {
		if t == tok {
			return append(tokens[:i], tokens[i+1:]...)
		}
	}
	return tokens
}
