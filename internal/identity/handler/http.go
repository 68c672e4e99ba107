// Package handler exposes the auth endpoints: register, login, logout.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"channel-chat/internal/audit"
	identityservice "channel-chat/internal/identity/service"
	"channel-chat/internal/server/middleware"
)

// SessionCloser terminates the live streams a session opened. Implemented by
// live.Registry.
type SessionCloser interface {
	CloseSession(userID int64, session string)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth     *identityservice.AuthService
	audits   audit.AuditLogger
	sessions SessionCloser
}

// NewAuthHandler returns an AuthHandler. audits may be nil; auth events are
// then not recorded. sessions may be nil; logout then only revokes the token.
func NewAuthHandler(auth *identityservice.AuthService, audits audit.AuditLogger, sessions SessionCloser) *AuthHandler {
	return &AuthHandler{auth: auth, audits: audits, sessions: sessions}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identityservice.ErrEmailAlreadyRegistered),
			errors.Is(err, identityservice.ErrUsernameTaken):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.logEvent(r, u.ID, "register")
	respondJSON(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login. Failures are uniform: unknown email and
// wrong password produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tok, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identityservice.ErrInvalidCredentials) {
			h.logEvent(r, 0, "login_failure")
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("auth: login: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.logEvent(r, u.ID, "login")
	respondJSON(w, http.StatusOK, loginResponse{Token: tok.Secret, User: u})
}

// Logout handles POST /api/auth/logout. The route sits behind the auth
// middleware, so the presented token is known valid; revoking it again is
// still safe.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	secret, _ := middleware.GetTokenSecret(r.Context())
	h.auth.Logout(secret)
	userID, _ := middleware.GetUserID(r.Context())
	if h.sessions != nil {
		// Close any event streams still open on the revoked session.
		h.sessions.CloseSession(userID, secret)
	}
	h.logEvent(r, userID, "logout")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) logEvent(r *http.Request, userID int64, action string) {
	if h.audits == nil {
		return
	}
	h.audits.LogEvent(r.Context(), userID, action, "auth", "")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("auth: encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
