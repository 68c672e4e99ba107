// Package service implements the business actions of the chat service. Every
// action persists its change first, then constructs the corresponding event
// and hands it to the broadcast router; real-time delivery is best-effort and
// never fails the action.
package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	channeldomain "channel-chat/internal/channel/domain"
	"channel-chat/internal/event"
	invitationdomain "channel-chat/internal/invitation/domain"
	membershipdomain "channel-chat/internal/membership/domain"
	messagedomain "channel-chat/internal/message/domain"
	userdomain "channel-chat/internal/user/domain"
)

// Sentinel errors for the chat service; handlers map them to HTTP statuses.
var (
	ErrChannelNotFound      = errors.New("channel not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotMember            = errors.New("user is not a member of the channel")
	ErrReadOnlyMember       = errors.New("read-only members cannot post messages")
	ErrAlreadyMember        = errors.New("user is already a member of the channel")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidUsername      = errors.New("username must be 3-32 letters, digits, or underscores")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is not pending")
)

// ChannelRepo is the minimal channel repository needed by the chat service.
type ChannelRepo interface {
	GetByID(ctx context.Context, id int64) (*channeldomain.Channel, error)
	Create(ctx context.Context, c *channeldomain.Channel) error
	Rename(ctx context.Context, id int64, name string) error
}

// MessageRepo is the minimal message repository needed by the chat service.
type MessageRepo interface {
	Create(ctx context.Context, m *messagedomain.Message) error
	ListRecent(ctx context.Context, channelID int64, limit int) ([]*messagedomain.Message, error)
}

// MembershipRepo is the minimal membership repository needed by the chat service.
type MembershipRepo interface {
	Add(ctx context.Context, m *membershipdomain.Membership) error
	Remove(ctx context.Context, channelID, userID int64) error
	ListChannelIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

// InvitationRepo is the minimal invitation repository needed by the chat service.
type InvitationRepo interface {
	GetByID(ctx context.Context, id string) (*invitationdomain.Invitation, error)
	ListPendingByInvitee(ctx context.Context, inviteeID int64) ([]*invitationdomain.Invitation, error)
	Create(ctx context.Context, inv *invitationdomain.Invitation) error
	SetStatus(ctx context.Context, id string, status invitationdomain.Status) error
}

// UserRepo is the minimal user repository needed by the chat service.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
}

// Gate resolves recipient sets and member roles for a channel.
type Gate interface {
	RecipientsFor(ctx context.Context, channelID int64) ([]int64, error)
	RecipientsExcluding(ctx context.Context, channelID, excludedUserID int64) ([]int64, error)
	RoleOf(ctx context.Context, channelID, userID int64) (membershipdomain.Role, bool, error)
}

// Deliverer pushes an event to the live emitters of the recipients.
type Deliverer interface {
	Deliver(ev event.Event, recipients []int64)
}

// ChatService wires the repositories, the authorization gate, the delivery-id
// sequence, and the broadcast router behind the business actions.
type ChatService struct {
	channels    ChannelRepo
	messages    MessageRepo
	memberships MembershipRepo
	invitations InvitationRepo
	users       UserRepo
	gate        Gate
	router      Deliverer
	seq         *event.Sequence
}

// NewChatService returns a ChatService with the given dependencies.
func NewChatService(
	channels ChannelRepo,
	messages MessageRepo,
	memberships MembershipRepo,
	invitations InvitationRepo,
	users UserRepo,
	gate Gate,
	router Deliverer,
	seq *event.Sequence,
) *ChatService {
	return &ChatService{
		channels:    channels,
		messages:    messages,
		memberships: memberships,
		invitations: invitations,
		users:       users,
		gate:        gate,
		router:      router,
		seq:         seq,
	}
}

// SendMessage posts a message to the channel and broadcasts NewMessage to
// every member, the author included (their other devices want it too).
// Read-only members are rejected before anything is persisted.
func (s *ChatService) SendMessage(ctx context.Context, authorID, channelID int64, body string) (*messagedomain.Message, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	role, member, err := s.gate.RoleOf(ctx, channelID, authorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}
	if role == membershipdomain.RoleReadOnly {
		return nil, ErrReadOnlyMember
	}

	m := &messagedomain.Message{
		ChannelID: channelID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.broadcastToChannel(ctx, channelID, event.NewMessage(s.seq, m))
	return m, nil
}

// ListMessages returns up to limit recent messages of a channel the user
// belongs to, newest first.
func (s *ChatService) ListMessages(ctx context.Context, userID, channelID int64, limit int) ([]*messagedomain.Message, error) {
	if _, member, err := s.gate.RoleOf(ctx, channelID, userID); err != nil {
		return nil, err
	} else if !member {
		return nil, ErrNotMember
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messages.ListRecent(ctx, channelID, limit)
}

// CreateChannel creates a channel with the creator as its first read-write
// member. No broadcast: there is nobody else to notify yet.
func (s *ChatService) CreateChannel(ctx context.Context, creatorID int64, name string) (*channeldomain.Channel, error) {
	ch := &channeldomain.Channel{Name: name, CreatedBy: creatorID, CreatedAt: time.Now().UTC()}
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, err
	}
	m := &membershipdomain.Membership{
		ChannelID: ch.ID,
		UserID:    creatorID,
		Role:      membershipdomain.RoleReadWrite,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.memberships.Add(ctx, m); err != nil {
		return nil, err
	}
	return ch, nil
}

// ListChannels returns the channels the user belongs to, in membership order.
func (s *ChatService) ListChannels(ctx context.Context, userID int64) ([]*channeldomain.Channel, error) {
	channelIDs, err := s.memberships.ListChannelIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*channeldomain.Channel, 0, len(channelIDs))
	for _, id := range channelIDs {
		ch, err := s.channels.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out, nil
}

// RenameChannel renames the channel and broadcasts ChannelRenamed to every
// member, the actor included.
func (s *ChatService) RenameChannel(ctx context.Context, actorID, channelID int64, name string) (*channeldomain.Channel, error) {
	ch, err := s.requireWritableMember(ctx, actorID, channelID)
	if err != nil {
		return nil, err
	}
	renamed := *ch
	renamed.Name = name
	if err := renamed.Validate(); err != nil {
		return nil, err
	}
	if err := s.channels.Rename(ctx, channelID, name); err != nil {
		return nil, err
	}

	s.broadcastToChannel(ctx, channelID, event.ChannelRenamed(s.seq, &renamed))
	return &renamed, nil
}

// AddMember adds a user to the channel with the given role and broadcasts
// MemberJoined to the other members. The joining user gets no notice about
// themselves.
func (s *ChatService) AddMember(ctx context.Context, actorID, channelID, userID int64, role membershipdomain.Role) error {
	ch, err := s.requireWritableMember(ctx, actorID, channelID)
	if err != nil {
		return err
	}
	joined, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if joined == nil {
		return ErrUserNotFound
	}
	if _, member, err := s.gate.RoleOf(ctx, channelID, userID); err != nil {
		return err
	} else if member {
		return ErrAlreadyMember
	}
	if !role.Valid() {
		role = membershipdomain.RoleReadWrite
	}
	m := &membershipdomain.Membership{
		ChannelID: channelID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.memberships.Add(ctx, m); err != nil {
		return err
	}

	s.broadcastExcluding(ctx, channelID, userID, event.MemberJoined(s.seq, ch, joined))
	return nil
}

// RemoveMember removes a user from the channel and broadcasts MemberLeft to
// the remaining members.
func (s *ChatService) RemoveMember(ctx context.Context, actorID, channelID, userID int64) error {
	var ch *channeldomain.Channel
	var err error
	if actorID == userID {
		// Leaving a channel needs no role check.
		ch, err = s.channels.GetByID(ctx, channelID)
		if err != nil {
			return err
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		if _, member, err := s.gate.RoleOf(ctx, channelID, userID); err != nil {
			return err
		} else if !member {
			return ErrNotMember
		}
	} else {
		ch, err = s.requireWritableMember(ctx, actorID, channelID)
		if err != nil {
			return err
		}
	}
	left, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if left == nil {
		return ErrUserNotFound
	}
	if err := s.memberships.Remove(ctx, channelID, userID); err != nil {
		return err
	}

	// Recipients are resolved after the removal, so the departed user is
	// already outside the set.
	s.broadcastToChannel(ctx, channelID, event.MemberLeft(s.seq, ch, left))
	return nil
}

// Invite creates a pending invitation and delivers NewInvitation to the
// invitee only.
func (s *ChatService) Invite(ctx context.Context, inviterID, channelID, inviteeID int64) (*invitationdomain.Invitation, error) {
	if _, err := s.requireWritableMember(ctx, inviterID, channelID); err != nil {
		return nil, err
	}
	invitee, err := s.users.GetByID(ctx, inviteeID)
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, ErrUserNotFound
	}
	if _, member, err := s.gate.RoleOf(ctx, channelID, inviteeID); err != nil {
		return nil, err
	} else if member {
		return nil, ErrAlreadyMember
	}

	inv := &invitationdomain.Invitation{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    invitationdomain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.router.Deliver(event.NewInvitation(s.seq, inv), []int64{inviteeID})
	return inv, nil
}

// ListInvitations returns the user's pending invitations, newest first.
func (s *ChatService) ListInvitations(ctx context.Context, userID int64) ([]*invitationdomain.Invitation, error) {
	return s.invitations.ListPendingByInvitee(ctx, userID)
}

// AcceptInvitation accepts a pending invitation addressed to userID: the user
// becomes a read-write member, the inviter gets InvitationAccepted, and the
// other members get MemberJoined (not the new member themselves).
func (s *ChatService) AcceptInvitation(ctx context.Context, userID int64, invitationID string) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	// An invitation addressed to someone else is reported as not found, so
	// invitation ids cannot be probed.
	if inv == nil || inv.InviteeID != userID {
		return ErrInvitationNotFound
	}
	if inv.Status != invitationdomain.StatusPending {
		return ErrInvitationNotPending
	}
	ch, err := s.channels.GetByID(ctx, inv.ChannelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return ErrChannelNotFound
	}
	joined, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if joined == nil {
		return ErrUserNotFound
	}

	if err := s.invitations.SetStatus(ctx, invitationID, invitationdomain.StatusAccepted); err != nil {
		return err
	}
	accepted := *inv
	accepted.Status = invitationdomain.StatusAccepted
	m := &membershipdomain.Membership{
		ChannelID: inv.ChannelID,
		UserID:    userID,
		Role:      membershipdomain.RoleReadWrite,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.memberships.Add(ctx, m); err != nil {
		return err
	}

	s.router.Deliver(event.InvitationAccepted(s.seq, &accepted), []int64{inv.InviterID})
	s.broadcastExcluding(ctx, inv.ChannelID, userID, event.MemberJoined(s.seq, ch, joined))
	return nil
}

// DeclineInvitation marks a pending invitation declined. No broadcast.
func (s *ChatService) DeclineInvitation(ctx context.Context, userID int64, invitationID string) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv == nil || inv.InviteeID != userID {
		return ErrInvitationNotFound
	}
	if inv.Status != invitationdomain.StatusPending {
		return ErrInvitationNotPending
	}
	return s.invitations.SetStatus(ctx, invitationID, invitationdomain.StatusDeclined)
}

// ChangeUsername renames the user and broadcasts UsernameChanged to every
// member of every channel the user belongs to, deduplicated, excluding the
// user themself.
func (s *ChatService) ChangeUsername(ctx context.Context, userID int64, username string) (*userdomain.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if taken, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if taken != nil && taken.ID != userID {
		return nil, ErrUsernameTaken
	}
	if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
		return nil, err
	}
	renamed := *u
	renamed.Username = username
	renamed.UpdatedAt = time.Now().UTC()

	recipients, err := s.peersOf(ctx, userID)
	if err != nil {
		log.Printf("chat: resolving username-change recipients for user %d: %v", userID, err)
		return &renamed, nil
	}
	s.router.Deliver(event.UsernameChanged(s.seq, &renamed), recipients)
	return &renamed, nil
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// requireWritableMember loads the channel and checks the actor holds a
// read-write membership in it.
func (s *ChatService) requireWritableMember(ctx context.Context, actorID, channelID int64) (*channeldomain.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	role, member, err := s.gate.RoleOf(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}
	if role == membershipdomain.RoleReadOnly {
		return nil, ErrReadOnlyMember
	}
	return ch, nil
}

// peersOf returns every user sharing at least one channel with userID,
// deduplicated, without userID itself.
func (s *ChatService) peersOf(ctx context.Context, userID int64) ([]int64, error) {
	channelIDs, err := s.memberships.ListChannelIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{})
	var out []int64
	for _, chID := range channelIDs {
		ids, err := s.gate.RecipientsExcluding(ctx, chID, userID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// broadcastToChannel delivers ev to every current member. A recipient lookup
// failure is logged and swallowed: the business action already succeeded.
func (s *ChatService) broadcastToChannel(ctx context.Context, channelID int64, ev event.Event) {
	recipients, err := s.gate.RecipientsFor(ctx, channelID)
	if err != nil {
		log.Printf("chat: resolving recipients for channel %d: %v", channelID, err)
		return
	}
	s.router.Deliver(ev, recipients)
}

func (s *ChatService) broadcastExcluding(ctx context.Context, channelID, excludedUserID int64, ev event.Event) {
	recipients, err := s.gate.RecipientsExcluding(ctx, channelID, excludedUserID)
	if err != nil {
		log.Printf("chat: resolving recipients for channel %d: %v", channelID, err)
		return
	}
	s.router.Deliver(ev, recipients)
}
