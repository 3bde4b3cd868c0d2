// Package conversation holds the chat session model and the orchestrator
// that turns an inbound user message into a persisted assistant reply.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Message roles as stored and as sent to the completion API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is a chat session keyed by a caller-supplied session ID.
type Conversation struct {
	ID             uint
	SessionID      string
	UserIdentifier *string
	Metadata       map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Message is a single turn within a conversation.
type Message struct {
	ID             uint
	PublicID       uuid.UUID
	ConversationID uint
	Role           string
	Content        string
	TokensUsed     *int
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}
