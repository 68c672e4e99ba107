// Package telemetry carries observability events from the HTTP layer to the
// configured sinks (Kafka, OTel logs). Emission is always best-effort.
package telemetry

import (
	"context"

	"channel-chat/internal/telemetry/domain"
)

// EventEmitter emits telemetry events. Callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}
