package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-messaging/internal/apperrors"
	"campus-messaging/internal/models"
	"campus-messaging/internal/services"
	"campus-messaging/internal/telemetry"
)

// OnlineLister reports which users hold a realtime connection.
type OnlineLister interface {
	Online(ctx context.Context) ([]string, error)
}

// ChatHandler serves private chat and connection request endpoints.
type ChatHandler struct {
	chat        *services.ChatService
	connections *services.ConnectionService
	online      OnlineLister
	audit       *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler. audit may be nil.
func NewChatHandler(chat *services.ChatService, connections *services.ConnectionService, online OnlineLister, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		chat:        chat,
		connections: connections,
		online:      online,
		audit:       audit,
	}
}

// SendMessage stores a private message and pushes it to both parties.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		RecipientID string `json:"recipientId" binding:"required"`
		Content     string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("Recipient ID and content are required"))
		return
	}

	userID := callerID(c)
	msg, err := h.chat.SendMessage(c.Request.Context(), userID, req.RecipientID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), requestIDFromContext(c), userID, telemetry.ActionMessageSent, req.RecipientID, "success")
	respondData(c, http.StatusCreated, msg)
}

// GetHistory returns the conversation with :userId, oldest first.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	otherID := c.Param("userId")
	if otherID == "" {
		respondError(c, apperrors.BadRequest("User ID is required"))
		return
	}

	msgs, err := h.chat.GetHistory(c.Request.Context(), callerID(c), otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.PrivateMessage{}
	}
	respondData(c, http.StatusOK, msgs)
}

// DeleteConversation wipes the history with targetUserId for both sides.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	var req struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("Target user ID is required"))
		return
	}

	userID := callerID(c)
	if _, err := h.chat.DeleteConversation(c.Request.Context(), userID, req.TargetUserID); err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), requestIDFromContext(c), userID, telemetry.ActionConversationDeleted, req.TargetUserID, "success")
	respondMessage(c, "Chat history deleted")
}

func (h *ChatHandler) SendRequest(c *gin.Context) {
	var req struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("Target user ID is required"))
		return
	}

	userID := callerID(c)
	if err := h.connections.SendConnectionRequest(c.Request.Context(), req.TargetUserID, userID, callerName(c)); err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), requestIDFromContext(c), userID, telemetry.ActionRequestSent, req.TargetUserID, "success")
	respondMessage(c, "Connection request sent")
}

func (h *ChatHandler) AcceptRequest(c *gin.Context) {
	requesterID, ok := bindRequesterID(c)
	if !ok {
		return
	}

	userID := callerID(c)
	if err := h.connections.AcceptConnectionRequest(c.Request.Context(), userID, requesterID); err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), requestIDFromContext(c), userID, telemetry.ActionRequestAccepted, requesterID, "success")
	respondMessage(c, "Connection request accepted")
}

func (h *ChatHandler) RejectRequest(c *gin.Context) {
	requesterID, ok := bindRequesterID(c)
	if !ok {
		return
	}

	userID := callerID(c)
	if err := h.connections.RejectConnectionRequest(c.Request.Context(), userID, requesterID); err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), requestIDFromContext(c), userID, telemetry.ActionRequestRejected, requesterID, "success")
	respondMessage(c, "Connection request rejected")
}

// GetRequests lists the caller's pending requests with requester profiles.
func (h *ChatHandler) GetRequests(c *gin.Context) {
	reqs, err := h.connections.GetPendingRequests(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if reqs == nil {
		reqs = []models.ResolvedRequest{}
	}
	respondData(c, http.StatusOK, reqs)
}

func (h *ChatHandler) Online(c *gin.Context) {
	users, err := h.online.Online(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	respondData(c, http.StatusOK, users)
}

func bindRequesterID(c *gin.Context) (string, bool) {
	var req struct {
		RequesterID string `json:"requesterId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest("Requester ID is required"))
		return "", false
	}
	return req.RequesterID, true
}
