// Package handler exposes the audit log endpoint.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	auditrepo "channel-chat/internal/audit/repository"
	"channel-chat/internal/server/middleware"
)

// AuditHandler serves GET /api/audit-logs.
type AuditHandler struct {
	repo auditrepo.Repository
}

// NewAuditHandler returns an AuditHandler backed by repo.
func NewAuditHandler(repo auditrepo.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListMine returns the caller's own audit log entries, newest first. Paginated
// with limit and offset query parameters.
func (h *AuditHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	entries, err := h.repo.ListByUser(r.Context(), userID, int32(limit), int32(offset))
	if err != nil {
		log.Printf("audit: list: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(entries)
}
