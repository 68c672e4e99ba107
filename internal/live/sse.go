package live

import (
	"context"
	"io"
	"sync"

	"channel-chat/internal/event"
)

// SSEEmitter is an Emitter backed by a bounded buffer drained onto one
// server-sent-events connection. Send never blocks: a full buffer fails the
// send, which detaches the emitter, so a stalled client cannot hold up the
// broadcasting caller.
type SSEEmitter struct {
	ch        chan event.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewSSEEmitter returns an emitter with the given outbound buffer size.
func NewSSEEmitter(buffer int) *SSEEmitter {
	return &SSEEmitter{
		ch:   make(chan event.Event, buffer),
		done: make(chan struct{}),
	}
}

// Send queues the event for the connection. Fails with ErrEmitterClosed after
// Close and ErrSlowClient when the buffer is full.
func (e *SSEEmitter) Send(ev event.Event) error {
	select {
	case <-e.done:
		return ErrEmitterClosed
	default:
	}
	select {
	case e.ch <- ev:
		return nil
	case <-e.done:
		return ErrEmitterClosed
	default:
		return ErrSlowClient
	}
}

// Close stops the emitter and unblocks Serve. Idempotent.
func (e *SSEEmitter) Close() {
	e.closeOnce.Do(func() { close(e.done) })
}

// Flusher flushes buffered response data to the client after each frame.
// *http.ResponseWriter via http.Flusher satisfies it in production.
type Flusher interface {
	Flush()
}

// Serve drains queued events onto w as SSE frames until ctx is cancelled, the
// emitter is closed, or a write fails. The write error (client gone) is
// returned so the handler can log it; the handler detaches the emitter in all
// cases.
func (e *SSEEmitter) Serve(ctx context.Context, w io.Writer, f Flusher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.done:
			return nil
		case ev := <-e.ch:
			frame, err := event.EncodeSSE(ev)
			if err != nil {
				return err
			}
			if _, err := w.Write(frame); err != nil {
				return err
			}
			if f != nil {
				f.Flush()
			}
		}
	}
}
