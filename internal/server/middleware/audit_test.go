package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"channel-chat/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (m *memAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *memAuditRepo) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (m *memAuditRepo) Create(ctx context.Context, a *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, a)
	return nil
}

func (m *memAuditRepo) all() []*domain.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditLog(nil), m.entries...)
}

func identify(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID, "secret")))
		})
	}
}

func TestAudit_RecordsAuthenticatedRequest(t *testing.T) {
	repo := &memAuditRepo{}
	router := chi.NewRouter()
	router.Use(identify(42))
	router.Use(Audit(repo, nil))
	router.Put("/api/channels/{channelID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPut, "/api/channels/7", nil)
	req.RemoteAddr = "9.8.7.6:1234"
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := repo.all()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.UserID != 42 {
		t.Errorf("user_id = %d, want 42", e.UserID)
	}
	if e.Action != "update" || e.Resource != "channel" {
		t.Errorf("action/resource = %q/%q, want update/channel", e.Action, e.Resource)
	}
	if e.IP != "9.8.7.6" {
		t.Errorf("ip = %q, want 9.8.7.6", e.IP)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("entry ID and CreatedAt must be set")
	}
}

func TestAudit_SkipsUnauthenticated(t *testing.T) {
	repo := &memAuditRepo{}
	router := chi.NewRouter()
	router.Use(Audit(repo, nil))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if entries := repo.all(); len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}

func TestAudit_SkipRoutes(t *testing.T) {
	repo := &memAuditRepo{}
	skip := map[string]bool{"GET /api/events": true}
	router := chi.NewRouter()
	router.Use(identify(1))
	router.Use(Audit(repo, skip))
	router.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {})
	router.Get("/api/channels", func(w http.ResponseWriter, r *http.Request) {})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/channels", nil))

	entries := repo.all()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Resource != "channel" {
		t.Errorf("resource = %q, want channel", entries[0].Resource)
	}
}
