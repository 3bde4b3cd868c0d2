package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/supportchat/chat-api/internal/domain/conversation"
	"github.com/supportchat/chat-api/internal/infrastructure/database/entities"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// MessageRepository persists conversation turns.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts the message record and backfills generated fields.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	entity := entities.NewSchemaMessage(msg)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindStorage, "failed to create message")
	}
	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

// ListRecent returns the newest limit messages in chronological order.
func (r *MessageRepository) ListRecent(ctx context.Context, conversationID uint, limit int) ([]domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to list messages")
	}
	return toDomainChronological(rows), nil
}

// ListBefore returns up to limit messages older than beforeID in
// chronological order. A zero beforeID starts from the newest message.
func (r *MessageRepository) ListBefore(ctx context.Context, conversationID uint, beforeID uint, limit int) ([]domain.Message, error) {
	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var rows []entities.Message
	if err := query.
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to list messages")
	}
	return toDomainChronological(rows), nil
}

// CountByConversation returns the number of stored turns.
func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, apperrors.KindStorage, "failed to count messages")
	}
	return count, nil
}

// toDomainChronological reverses the DESC-ordered rows into oldest-first.
func toDomainChronological(rows []entities.Message) []domain.Message {
	out := make([]domain.Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = *row.EtoD()
	}
	return out
}
