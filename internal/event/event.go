// Package event defines the closed set of domain events pushed to live
// clients, and the delivery-id sequence that orders them.
package event

import (
	"sync/atomic"
	"time"

	channeldomain "channel-chat/internal/channel/domain"
	invitationdomain "channel-chat/internal/invitation/domain"
	messagedomain "channel-chat/internal/message/domain"
	userdomain "channel-chat/internal/user/domain"
)

// Type tags an event variant. The set is closed; the wire encoder switches
// exhaustively over it.
type Type string

const (
	TypeNewMessage         Type = "new_message"
	TypeChannelRenamed     Type = "channel_renamed"
	TypeMemberJoined       Type = "member_joined"
	TypeMemberLeft         Type = "member_left"
	TypeNewInvitation      Type = "new_invitation"
	TypeInvitationAccepted Type = "invitation_accepted"
	TypeUsernameChanged    Type = "username_changed"
	TypeKeepAlive          Type = "keep_alive"
)

// Sequence assigns delivery ids. Ids are unique and strictly increasing for
// the lifetime of the Sequence; they reflect construction order, not send
// order. One Sequence is created at server startup and injected wherever
// events are constructed.
type Sequence struct {
	n atomic.Uint64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next delivery id.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Event is one broadcastable domain event. DeliveryID is 0 only for KeepAlive,
// which carries no id on the wire.
type Event struct {
	Type       Type
	DeliveryID uint64
	Payload    any
}

// MessagePayload carries a newly created message.
type MessagePayload struct {
	Message *messagedomain.Message `json:"message"`
}

// ChannelPayload carries a channel after a change to it (e.g. a rename).
type ChannelPayload struct {
	Channel *channeldomain.Channel `json:"channel"`
}

// MemberPayload carries a membership change: which user joined or left which
// channel.
type MemberPayload struct {
	Channel *channeldomain.Channel `json:"channel"`
	User    *userdomain.User       `json:"user"`
}

// InvitationPayload carries an invitation for NewInvitation and
// InvitationAccepted.
type InvitationPayload struct {
	Invitation *invitationdomain.Invitation `json:"invitation"`
}

// UserPayload carries a user after a profile change.
type UserPayload struct {
	User *userdomain.User `json:"user"`
}

// KeepAlivePayload carries only the heartbeat timestamp.
type KeepAlivePayload struct {
	At time.Time
}

// NewMessage constructs a NewMessage event with the next delivery id.
// Delivery ids are assigned here, at construction, so events built out of
// send order still carry ids reflecting construction order.
func NewMessage(seq *Sequence, m *messagedomain.Message) Event {
	return Event{Type: TypeNewMessage, DeliveryID: seq.Next(), Payload: MessagePayload{Message: m}}
}

// ChannelRenamed constructs a ChannelRenamed event with the next delivery id.
func ChannelRenamed(seq *Sequence, c *channeldomain.Channel) Event {
	return Event{Type: TypeChannelRenamed, DeliveryID: seq.Next(), Payload: ChannelPayload{Channel: c}}
}

// MemberJoined constructs a MemberJoined event with the next delivery id.
func MemberJoined(seq *Sequence, c *channeldomain.Channel, u *userdomain.User) Event {
	return Event{Type: TypeMemberJoined, DeliveryID: seq.Next(), Payload: MemberPayload{Channel: c, User: u}}
}

// MemberLeft constructs a MemberLeft event with the next delivery id.
func MemberLeft(seq *Sequence, c *channeldomain.Channel, u *userdomain.User) Event {
	return Event{Type: TypeMemberLeft, DeliveryID: seq.Next(), Payload: MemberPayload{Channel: c, User: u}}
}

// NewInvitation constructs a NewInvitation event with the next delivery id.
func NewInvitation(seq *Sequence, inv *invitationdomain.Invitation) Event {
	return Event{Type: TypeNewInvitation, DeliveryID: seq.Next(), Payload: InvitationPayload{Invitation: inv}}
}

// InvitationAccepted constructs an InvitationAccepted event with the next delivery id.
func InvitationAccepted(seq *Sequence, inv *invitationdomain.Invitation) Event {
	return Event{Type: TypeInvitationAccepted, DeliveryID: seq.Next(), Payload: InvitationPayload{Invitation: inv}}
}

// UsernameChanged constructs a UsernameChanged event with the next delivery id.
func UsernameChanged(seq *Sequence, u *userdomain.User) Event {
	return Event{Type: TypeUsernameChanged, DeliveryID: seq.Next(), Payload: UserPayload{User: u}}
}

// KeepAlive constructs a heartbeat event. It carries no delivery id and is
// encoded as a comment frame, never as a named event.
func KeepAlive(at time.Time) Event {
	return Event{Type: TypeKeepAlive, Payload: KeepAlivePayload{At: at}}
}
