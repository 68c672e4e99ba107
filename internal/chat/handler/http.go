// Package handler exposes the chat endpoints: channels, messages, members,
// invitations, and the user profile.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	channeldomain "channel-chat/internal/channel/domain"
	chatservice "channel-chat/internal/chat/service"
	membershipdomain "channel-chat/internal/membership/domain"
	messagedomain "channel-chat/internal/message/domain"
	"channel-chat/internal/server/middleware"
)

// ChatHandler serves the authenticated /api chat routes.
type ChatHandler struct {
	chat *chatservice.ChatService
}

// NewChatHandler returns a ChatHandler backed by the given service.
func NewChatHandler(chat *chatservice.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type createChannelRequest struct {
	Name string `json:"name"`
}

type renameChannelRequest struct {
	Name string `json:"name"`
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

type addMemberRequest struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type inviteRequest struct {
	InviteeID int64 `json:"invitee_id"`
}

type changeUsernameRequest struct {
	Username string `json:"username"`
}

// CreateChannel handles POST /api/channels.
func (h *ChatHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	var req createChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ch, err := h.chat.CreateChannel(r.Context(), userID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ch)
}

// ListChannels handles GET /api/channels.
func (h *ChatHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	chans, err := h.chat.ListChannels(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chans)
}

// RenameChannel handles PUT /api/channels/{channelID}.
func (h *ChatHandler) RenameChannel(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	channelID, ok := pathInt64(w, r, "channelID")
	if !ok {
		return
	}
	var req renameChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ch, err := h.chat.RenameChannel(r.Context(), userID, channelID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ch)
}

// SendMessage handles POST /api/channels/{channelID}/messages.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	channelID, ok := pathInt64(w, r, "channelID")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.chat.SendMessage(r.Context(), userID, channelID, req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// ListMessages handles GET /api/channels/{channelID}/messages?limit=n.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	channelID, ok := pathInt64(w, r, "channelID")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.chat.ListMessages(r.Context(), userID, channelID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

// AddMember handles POST /api/channels/{channelID}/members.
func (h *ChatHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	channelID, ok := pathInt64(w, r, "channelID")
	if !ok {
		return
	}
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.chat.AddMember(r.Context(), userID, channelID, req.UserID, membershipdomain.Role(req.Role)); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/channels/{channelID}/members/{userID}.
func (h *ChatHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	channelID, ok := pathInt64(w, r, "channelID")
	if !ok {
		return
	}
	userID, ok := pathInt64(w, r, "userID")
	if !ok {
		return
	}
	if err := h.chat.RemoveMember(r.Context(), actorID, channelID, userID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite handles POST /api/channels/{channelID}/invitations.
func (h *ChatHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	channelID, ok := pathInt64(w, r, "channelID")
	if !ok {
		return
	}
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	inv, err := h.chat.Invite(r.Context(), userID, channelID, req.InviteeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// ListInvitations handles GET /api/invitations.
func (h *ChatHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	invs, err := h.chat.ListInvitations(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invs)
}

// AcceptInvitation handles POST /api/invitations/{invitationID}/accept.
func (h *ChatHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	invitationID := chi.URLParam(r, "invitationID")
	if err := h.chat.AcceptInvitation(r.Context(), userID, invitationID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeclineInvitation handles POST /api/invitations/{invitationID}/decline.
func (h *ChatHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	invitationID := chi.URLParam(r, "invitationID")
	if err := h.chat.DeclineInvitation(r.Context(), userID, invitationID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeUsername handles PUT /api/users/me/username.
func (h *ChatHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	var req changeUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.chat.ChangeUsername(r.Context(), userID, req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatservice.ErrChannelNotFound),
		errors.Is(err, chatservice.ErrUserNotFound),
		errors.Is(err, chatservice.ErrInvitationNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatservice.ErrNotMember),
		errors.Is(err, chatservice.ErrReadOnlyMember):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, chatservice.ErrAlreadyMember),
		errors.Is(err, chatservice.ErrUsernameTaken),
		errors.Is(err, chatservice.ErrInvitationNotPending):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, chatservice.ErrInvalidUsername),
		errors.Is(err, messagedomain.ErrBodyRequired),
		errors.Is(err, channeldomain.ErrNameRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("chat: handler: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("chat: encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
