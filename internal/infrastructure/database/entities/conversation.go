package entities

import (
	"time"

	"gorm.io/datatypes"

	"github.com/supportchat/chat-api/internal/domain/conversation"
)

// Conversation is the database schema for chat sessions.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	SessionID      string            `gorm:"type:varchar(128);uniqueIndex;not null"`
	UserIdentifier *string           `gorm:"type:varchar(128);index"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts the database entity to the domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:             c.ID,
		SessionID:      c.SessionID,
		UserIdentifier: c.UserIdentifier,
		Metadata:       map[string]interface{}(c.Metadata),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
