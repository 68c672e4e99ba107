// Package producer defines the interface for emitting telemetry events to the
// audit pipeline (Kafka).
package producer

import (
	"context"

	"channel-chat/internal/telemetry/domain"
)

// Producer emits telemetry events. Callers use it best-effort: log and ignore
// errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; call
	// from a goroutine if needed.
	Emit(ctx context.Context, event *domain.Event) error
	// Close releases resources (e.g. the Kafka writer). Safe to call if
	// already closed.
	Close() error
}
