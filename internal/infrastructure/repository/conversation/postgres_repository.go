// Package conversation persists chat sessions and their messages in
// PostgreSQL via GORM.
package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/supportchat/chat-api/internal/domain/conversation"
	"github.com/supportchat/chat-api/internal/infrastructure/database/entities"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// Repository persists conversation records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate resolves the conversation for sessionID, inserting it when no
// row exists yet. Concurrent first messages for the same session race on the
// unique session_id index; the loser re-reads the winner's row.
func (r *Repository) GetOrCreate(ctx context.Context, sessionID string, userIdentifier *string, metadata map[string]any) (*domain.Conversation, bool, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&entity).Error
	if err == nil {
		return entity.EtoD(), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperrors.Wrap(err, apperrors.KindStorage, "failed to fetch conversation")
	}

	entity = entities.Conversation{
		SessionID:      sessionID,
		UserIdentifier: userIdentifier,
		Metadata:       datatypes.JSONMap(metadata),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).
		Create(&entity)
	if res.Error != nil {
		return nil, false, apperrors.Wrap(res.Error, apperrors.KindStorage, "failed to create conversation")
	}
	if res.RowsAffected == 0 {
		// lost the race, fetch the existing row
		if err := r.db.WithContext(ctx).
			Where("session_id = ?", sessionID).
			First(&entity).Error; err != nil {
			return nil, false, apperrors.Wrap(err, apperrors.KindStorage, "failed to fetch conversation")
		}
		return entity.EtoD(), false, nil
	}

	return entity.EtoD(), true, nil
}

// FindBySessionID fetches a conversation by its session ID.
func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound,
				fmt.Sprintf("conversation not found: %s", sessionID))
		}
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to fetch conversation")
	}
	return entity.EtoD(), nil
}

// Touch bumps the conversation's updated_at timestamp.
func (r *Repository) Touch(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("NOW()")).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindStorage, "failed to touch conversation")
	}
	return nil
}

// DeleteBySessionID removes the conversation and, via the foreign-key
// cascade, all of its messages.
func (r *Repository) DeleteBySessionID(ctx context.Context, sessionID string) error {
	res := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&entities.Conversation{})
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.KindStorage, "failed to delete conversation")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound,
			fmt.Sprintf("conversation not found: %s", sessionID))
	}
	return nil
}
