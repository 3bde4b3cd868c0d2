package conversation

import "context"

// Repository persists conversations.
type Repository interface {
	// GetOrCreate resolves the conversation for sessionID, creating it when
	// absent. Metadata is stored only on creation. The bool reports whether a
	// new row was created.
	GetOrCreate(ctx context.Context, sessionID string, userIdentifier *string, metadata map[string]any) (*Conversation, bool, error)
	FindBySessionID(ctx context.Context, sessionID string) (*Conversation, error)
	Touch(ctx context.Context, id uint) error
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// MessageRepository persists conversation turns.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// ListRecent returns the newest messages in chronological order.
	ListRecent(ctx context.Context, conversationID uint, limit int) ([]Message, error)
	// ListBefore returns up to limit messages older than beforeID in
	// chronological order. A zero beforeID means "from the newest".
	ListBefore(ctx context.Context, conversationID uint, beforeID uint, limit int) ([]Message, error)
	CountByConversation(ctx context.Context, conversationID uint) (int64, error)
}
