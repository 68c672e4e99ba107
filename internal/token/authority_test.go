package token

import (
	"sync"
	"testing"
	"time"
)

// fakeClock steps time manually for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestAuthority(absolute, rolling time.Duration, max int) (*Authority, *fakeClock) {
	a := NewAuthority(absolute, rolling, max)
	clk := newFakeClock()
	a.now = clk.Now
	return a, clk
}

func TestIssueAndValidate(t *testing.T) {
	a, clk := newTestAuthority(time.Hour, time.Hour, 5)

	tok, err := a.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.UserID != 7 {
		t.Errorf("UserID = %d, want 7", tok.UserID)
	}
	if !tok.CreatedAt.Equal(tok.LastUsedAt) {
		t.Error("new token should have CreatedAt == LastUsedAt")
	}

	clk.Advance(10 * time.Minute)
	got, ok := a.Validate(tok.Secret)
	if !ok {
		t.Fatal("Validate should succeed for a fresh token")
	}
	if got.UserID != 7 {
		t.Errorf("validated UserID = %d, want 7", got.UserID)
	}
	if !got.LastUsedAt.After(got.CreatedAt) {
		t.Error("Validate should refresh LastUsedAt")
	}
}

func TestValidate_UnknownAndMalformed(t *testing.T) {
	a, _ := newTestAuthority(time.Hour, time.Hour, 5)
	if _, err := a.Issue(1); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// A well-formed secret that was never issued.
	other := NewAuthority(time.Hour, time.Hour, 5)
	stranger, err := other.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for name, secret := range map[string]string{
		"unknown":   stranger.Secret,
		"malformed": "%%%not-a-secret%%%",
		"empty":     "",
	} {
		if _, ok := a.Validate(secret); ok {
			t.Errorf("Validate(%s) should fail", name)
		}
	}
}

func TestValidate_RollingExpiry(t *testing.T) {
	a, clk := newTestAuthority(100*time.Hour, time.Hour, 5)
	tok, err := a.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Repeated use within the rolling window keeps the token alive.
	for i := 0; i < 3; i++ {
		clk.Advance(50 * time.Minute)
		if _, ok := a.Validate(tok.Secret); !ok {
			t.Fatalf("Validate should succeed at step %d", i)
		}
	}

	clk.Advance(time.Hour + time.Second)
	if _, ok := a.Validate(tok.Secret); ok {
		t.Fatal("Validate should fail past the rolling TTL")
	}
	// The failed validation removed the token.
	if _, ok := a.Validate(tok.Secret); ok {
		t.Fatal("token should be gone after an expired validation")
	}
}

func TestValidate_AbsoluteCeiling(t *testing.T) {
	a, clk := newTestAuthority(time.Hour, time.Hour, 5)
	tok, err := a.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Keep refreshing just inside the rolling window.
	clk.Advance(40 * time.Minute)
	if _, ok := a.Validate(tok.Secret); !ok {
		t.Fatal("Validate should succeed before the absolute ceiling")
	}

	// lastUsed was refreshed moments ago, but the absolute cap is a hard
	// ceiling regardless of rolling refresh.
	clk.Advance(20*time.Minute + time.Second)
	if _, ok := a.Validate(tok.Secret); ok {
		t.Fatal("Validate should fail past the absolute TTL even after a recent use")
	}
}

func TestIssue_EvictsLeastRecentlyUsed(t *testing.T) {
	a, clk := newTestAuthority(100*time.Hour, 100*time.Hour, 5)

	var toks []Token
	for i := 0; i < 5; i++ {
		tok, err := a.Issue(1)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		toks = append(toks, tok)
		clk.Advance(time.Minute)
	}

	// Touch the first token so the second becomes least-recently-used.
	if _, ok := a.Validate(toks[0].Secret); !ok {
		t.Fatal("Validate(toks[0]) should succeed")
	}
	clk.Advance(time.Minute)

	sixth, err := a.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, ok := a.Validate(toks[1].Secret); ok {
		t.Error("least-recently-used token should have been evicted")
	}
	for _, tok := range []Token{toks[0], toks[2], toks[3], toks[4], sixth} {
		if _, ok := a.Validate(tok.Secret); !ok {
			t.Errorf("token issued at %v should still be valid", tok.CreatedAt)
		}
	}
}

func TestIssue_ExpiredTokenStillOccupiesSlot(t *testing.T) {
	a, clk := newTestAuthority(100*time.Hour, time.Hour, 3)

	stale, err := a.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	// Let it expire without validating; it must keep its slot.
	clk.Advance(2 * time.Hour)

	var fresh []Token
	for i := 0; i < 2; i++ {
		tok, err := a.Issue(1)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		fresh = append(fresh, tok)
		clk.Advance(time.Minute)
	}

	// Cap 3 is now full (stale + 2 fresh). The next issue evicts the stale
	// token as LRU rather than any fresh one.
	fourth, err := a.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, ok := a.Validate(stale.Secret); ok {
		t.Error("stale token should be expired and evicted")
	}
	for _, tok := range []Token{fresh[0], fresh[1], fourth} {
		if _, ok := a.Validate(tok.Secret); !ok {
			t.Error("fresh token should remain valid after eviction")
		}
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	a, _ := newTestAuthority(time.Hour, time.Hour, 5)
	tok, err := a.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !a.Revoke(tok.Secret) {
		t.Error("first Revoke should report removal")
	}
	if a.Revoke(tok.Secret) {
		t.Error("second Revoke should be a no-op")
	}
	if _, ok := a.Validate(tok.Secret); ok {
		t.Error("revoked token should not validate")
	}
	if a.Revoke("garbage") {
		t.Error("Revoke of malformed secret should report false")
	}
}

func TestAuthority_ConcurrentUse(t *testing.T) {
	a, _ := newTestAuthority(time.Hour, time.Hour, 5)

	var wg sync.WaitGroup
	for u := int64(0); u < 8; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			var secrets []string
			for i := 0; i < 20; i++ {
				tok, err := a.Issue(userID)
				if err != nil {
					t.Errorf("Issue: %v", err)
					return
				}
				secrets = append(secrets, tok.Secret)
				a.Validate(secrets[len(secrets)/2])
				if i%3 == 0 {
					a.Revoke(secrets[0])
				}
			}
		}(u)
	}
	wg.Wait()
}
