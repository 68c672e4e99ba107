// Package live implements real-time fan-out: a registry of per-user live
// connections and a router that broadcasts domain events to them.
package live

import (
	"errors"

	"channel-chat/internal/event"
)

var (
	// ErrEmitterClosed is returned by Send after the emitter was closed.
	ErrEmitterClosed = errors.New("live: emitter closed")
	// ErrSlowClient is returned by Send when the client's outbound buffer is
	// full. The connection is treated as dead; the client must reconnect and
	// resync rather than silently miss events.
	ErrSlowClient = errors.New("live: slow client")
)

// Emitter is a live, per-connection handle capable of pushing one event to
// exactly one connected client. An emitter is owned by the registry for the
// duration of the connection and is never shared across users.
type Emitter interface {
	// Send pushes the event without blocking. A non-nil error means the
	// connection is dead or too slow; the caller detaches the emitter and
	// never retries.
	Send(ev event.Event) error
	// Close releases the emitter. Subsequent Sends fail. Idempotent.
	Close()
}
