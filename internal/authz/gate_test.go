package authz

import (
	"context"
	"errors"
	"sync"
	"testing"

	"channel-chat/internal/membership/domain"
)

type memMembershipSource struct {
	mu      sync.Mutex
	members map[int64]map[int64]domain.Role // channelID -> userID -> role
	err     error
}

func (s *memMembershipSource) ListMemberIDs(ctx context.Context, channelID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []int64
	for id := range s.members[channelID] {
		out = append(out, id)
	}
	return out, nil
}

func (s *memMembershipSource) Get(ctx context.Context, channelID, userID int64) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	role, ok := s.members[channelID][userID]
	if !ok {
		return nil, nil
	}
	return &domain.Membership{ChannelID: channelID, UserID: userID, Role: role}, nil
}

func newSource() *memMembershipSource {
	return &memMembershipSource{members: map[int64]map[int64]domain.Role{
		10: {1: domain.RoleReadWrite, 2: domain.RoleReadOnly, 3: domain.RoleReadWrite},
		20: {1: domain.RoleReadOnly},
	}}
}

func TestRecipientsFor(t *testing.T) {
	g := NewGate(newSource())
	ids, err := g.RecipientsFor(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecipientsFor: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("got %d recipients, want 3 (all roles included)", len(ids))
	}

	ids, err = g.RecipientsFor(context.Background(), 999)
	if err != nil {
		t.Fatalf("RecipientsFor empty channel: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("empty channel returned %d recipients", len(ids))
	}
}

func TestRecipientsExcluding(t *testing.T) {
	g := NewGate(newSource())
	ids, err := g.RecipientsExcluding(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("RecipientsExcluding: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d recipients, want 2", len(ids))
	}
	for _, id := range ids {
		if id == 2 {
			t.Error("excluded user present in recipient set")
		}
	}

	// Excluding a non-member changes nothing.
	ids, err = g.RecipientsExcluding(context.Background(), 10, 42)
	if err != nil {
		t.Fatalf("RecipientsExcluding: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("got %d recipients, want 3", len(ids))
	}
}

func TestRoleOf(t *testing.T) {
	g := NewGate(newSource())

	role, member, err := g.RoleOf(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("RoleOf: %v", err)
	}
	if !member || role != domain.RoleReadOnly {
		t.Errorf("RoleOf(10, 2) = (%q, %v), want (read_only, true)", role, member)
	}

	_, member, err = g.RoleOf(context.Background(), 10, 42)
	if err != nil {
		t.Fatalf("RoleOf non-member: %v", err)
	}
	if member {
		t.Error("non-member reported as member")
	}
}

func TestGate_PropagatesStorageErrors(t *testing.T) {
	src := newSource()
	src.err = errors.New("db down")
	g := NewGate(src)

	if _, err := g.RecipientsFor(context.Background(), 10); err == nil {
		t.Error("RecipientsFor should surface storage errors")
	}
	if _, err := g.RecipientsExcluding(context.Background(), 10, 1); err == nil {
		t.Error("RecipientsExcluding should surface storage errors")
	}
	if _, _, err := g.RoleOf(context.Background(), 10, 1); err == nil {
		t.Error("RoleOf should surface storage errors")
	}
}
