package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/supportchat/chat-api/internal/domain/conversation"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/requests"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/responses"
)

// ChatHandler exposes HTTP entrypoints for the chat API.
type ChatHandler struct {
	service ChatService
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// SendMessage handles POST /v1/chat/message. It answers 201 when the turn
// opened a new conversation and 200 otherwise.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	in := conversation.SendInput{
		SessionID:      req.SessionID,
		Message:        req.Message,
		UserIdentifier: req.UserIdentifier,
		Metadata:       req.Metadata,
	}
	if in.UserIdentifier == nil {
		if sub := c.GetString("user_identifier"); sub != "" {
			in.UserIdentifier = &sub
		}
	}

	result, err := h.service.SendMessage(c.Request.Context(), in)
	if err != nil {
		responses.HandleError(c, err, "failed to process message")
		return
	}

	status := http.StatusOK
	if result.ConversationCreated {
		status = http.StatusCreated
	}
	c.JSON(status, responses.FromSendResult(result))
}

// GetConversation handles GET /v1/chat/conversations/:session_id.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	var query requests.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	page, err := h.service.GetHistory(c.Request.Context(), sessionID, query.Limit, query.Before)
	if err != nil {
		responses.HandleError(c, err, "failed to get conversation")
		return
	}

	c.JSON(http.StatusOK, responses.FromHistoryPage(page))
}

// DeleteConversation handles DELETE /v1/chat/conversations/:session_id.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.service.DeleteConversation(c.Request.Context(), sessionID); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}

	c.Status(http.StatusNoContent)
}
