// Package handler exposes the live event stream endpoint.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"channel-chat/internal/live"
	"channel-chat/internal/server/middleware"
)

// StreamHandler serves GET /api/events as a server-sent-events stream.
type StreamHandler struct {
	registry *live.Registry
	buffer   int
}

// NewStreamHandler returns a StreamHandler attaching emitters to registry
// with the given per-connection frame buffer.
func NewStreamHandler(registry *live.Registry, buffer int) *StreamHandler {
	return &StreamHandler{registry: registry, buffer: buffer}
}

// Stream attaches one emitter for the authenticated user and drains frames to
// the client until the connection drops, the client is detached for being too
// slow, the session is revoked, or the server shuts down. Each open connection
// is its own emitter, so one user may stream from several devices at once.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	session, _ := middleware.GetTokenSecret(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emitter := live.NewSSEEmitter(h.buffer)
	h.registry.Attach(userID, session, emitter)
	defer func() {
		h.registry.Detach(userID, emitter)
		emitter.Close()
	}()

	if err := emitter.Serve(r.Context(), w, flusher); err != nil {
		log.Printf("live: stream for user %d ended: %v", userID, err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
