package responses

import (
	"time"

	"github.com/supportchat/chat-api/internal/domain/conversation"
)

// MessagePayload is one conversation turn as returned to clients.
type MessagePayload struct {
	ID         string                 `json:"id"`
	Role       string                 `json:"role"`
	Content    string                 `json:"content"`
	TokensUsed *int                   `json:"tokens_used,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SendMessagePayload is returned from POST /v1/chat/message.
type SendMessagePayload struct {
	SessionID           string         `json:"session_id"`
	Message             MessagePayload `json:"message"`
	ConversationCreated bool           `json:"conversation_created"`
}

// ConversationPayload describes the conversation owning a history page.
type ConversationPayload struct {
	ID             uint                   `json:"id"`
	SessionID      string                 `json:"session_id"`
	UserIdentifier *string                `json:"user_identifier,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	MessageCount   int64                  `json:"message_count"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// PaginationPayload carries the cursor for older messages.
type PaginationPayload struct {
	HasMore    bool `json:"has_more"`
	NextCursor uint `json:"next_cursor,omitempty"`
}

// HistoryPayload is returned from GET /v1/chat/conversations/:session_id.
type HistoryPayload struct {
	Conversation ConversationPayload `json:"conversation"`
	Messages     []MessagePayload    `json:"messages"`
	Pagination   PaginationPayload   `json:"pagination"`
}

// FromMessage maps the domain message to its payload.
func FromMessage(m *conversation.Message) MessagePayload {
	return MessagePayload{
		ID:         m.PublicID.String(),
		Role:       m.Role,
		Content:    m.Content,
		TokensUsed: m.TokensUsed,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}

// FromSendResult maps a completed chat turn to its payload.
func FromSendResult(r *conversation.SendResult) SendMessagePayload {
	return SendMessagePayload{
		SessionID:           r.SessionID,
		Message:             FromMessage(&r.Reply),
		ConversationCreated: r.ConversationCreated,
	}
}

// FromHistoryPage maps a history page to its payload.
func FromHistoryPage(p *conversation.HistoryPage) HistoryPayload {
	messages := make([]MessagePayload, len(p.Messages))
	for i := range p.Messages {
		messages[i] = FromMessage(&p.Messages[i])
	}

	var conv ConversationPayload
	if p.Conversation != nil {
		conv = ConversationPayload{
			ID:             p.Conversation.ID,
			SessionID:      p.Conversation.SessionID,
			UserIdentifier: p.Conversation.UserIdentifier,
			Metadata:       p.Conversation.Metadata,
			MessageCount:   p.TotalMessages,
			CreatedAt:      p.Conversation.CreatedAt,
			UpdatedAt:      p.Conversation.UpdatedAt,
		}
	}

	return HistoryPayload{
		Conversation: conv,
		Messages:     messages,
		Pagination: PaginationPayload{
			HasMore:    p.HasMore,
			NextCursor: p.NextCursor,
		},
	}
}
