package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"channel-chat/internal/live"
	"channel-chat/internal/server/middleware"
)

// Strips the Flusher implementation from httptest.ResponseRecorder.
type plainWriter struct {
	http.ResponseWriter
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestStream_MissingIdentityIsJSONError(t *testing.T) {
	h := NewStreamHandler(live.NewRegistry(), 4)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)

	h.Stream(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if msg := decodeError(t, rec); msg != "missing or invalid authorization" {
		t.Errorf("error = %q", msg)
	}
}

func TestStream_UnsupportedWriterIsJSONError(t *testing.T) {
	h := NewStreamHandler(live.NewRegistry(), 4)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 1, "secret"))

	h.Stream(plainWriter{rec}, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if msg := decodeError(t, rec); msg != "streaming unsupported" {
		t.Errorf("error = %q", msg)
	}
}
