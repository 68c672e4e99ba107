package live

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"channel-chat/internal/event"
	messagedomain "channel-chat/internal/message/domain"
)

type countingFlusher struct {
	mu sync.Mutex
	n  int
}

func (f *countingFlusher) Flush() {
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
}

// syncWriter makes strings.Builder safe to read while Serve writes.
type syncWriter struct {
	mu sync.Mutex
	b  strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestSSEEmitter_SendAfterClose(t *testing.T) {
	e := NewSSEEmitter(4)
	e.Close()
	e.Close() // idempotent

	err := e.Send(event.KeepAlive(time.Now()))
	if !errors.Is(err, ErrEmitterClosed) {
		t.Errorf("Send after Close = %v, want ErrEmitterClosed", err)
	}
}

func TestSSEEmitter_FullBufferFailsSend(t *testing.T) {
	e := NewSSEEmitter(2)
	seq := event.NewSequence()

	for i := 0; i < 2; i++ {
		if err := e.Send(event.NewMessage(seq, &messagedomain.Message{Body: "x"})); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	err := e.Send(event.NewMessage(seq, &messagedomain.Message{Body: "overflow"}))
	if !errors.Is(err, ErrSlowClient) {
		t.Errorf("Send on full buffer = %v, want ErrSlowClient", err)
	}
}

func TestSSEEmitter_ServeWritesFrames(t *testing.T) {
	e := NewSSEEmitter(4)
	seq := event.NewSequence()
	w := &syncWriter{}
	f := &countingFlusher{}

	if err := e.Send(event.NewMessage(seq, &messagedomain.Message{ID: 1, Body: "hi"})); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := e.Send(event.KeepAlive(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Send: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Serve(context.Background(), w, f) }()

	deadline := time.After(time.Second)
	for {
		out := w.String()
		if strings.Contains(out, "event: new_message\n") && strings.Contains(out, ": keep-alive ") {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("frames not written in time, got %q", w.String())
		case <-time.After(time.Millisecond):
		}
	}

	e.Close()
	if err := <-done; err != nil {
		t.Fatalf("Serve: %v", err)
	}

	f.mu.Lock()
	flushes := f.n
	f.mu.Unlock()
	if flushes < 2 {
		t.Errorf("flushed %d times, want at least 2", flushes)
	}
}

func TestSSEEmitter_ServeStopsOnContextCancel(t *testing.T) {
	e := NewSSEEmitter(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Serve(ctx, &syncWriter{}, nil) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve after cancel: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after context cancel")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("client went away")
}

func TestSSEEmitter_ServeReturnsWriteError(t *testing.T) {
	e := NewSSEEmitter(4)
	if err := e.Send(event.KeepAlive(time.Now())); err != nil {
		t.Fatalf("Send: %v", err)
	}

	err := e.Serve(context.Background(), failingWriter{}, nil)
	if err == nil {
		t.Fatal("Serve should surface the write error")
	}
}
