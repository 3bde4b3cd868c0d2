// Package faq persists knowledge-base entries and runs the hybrid
// full-text/keyword search in PostgreSQL.
package faq

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	domain "github.com/supportchat/chat-api/internal/domain/faq"
	"github.com/supportchat/chat-api/internal/infrastructure/database/entities"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// Repository persists FAQ entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a FAQ repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// hybridSearchSQL combines full-text relevance with exact keyword-tag
// intersection. A row qualifies through either path; text relevance wins
// ordering, with priority and recency as tie-breakers.
const hybridSearchSQL = `
SELECT id, question, answer, category, keywords, priority, is_active, created_at, updated_at,
       ts_rank(search_vector, to_tsquery('english', ?)) AS rank
FROM faqs
WHERE is_active = true
  AND (search_vector @@ to_tsquery('english', ?) OR keywords && ?)
ORDER BY rank DESC, priority DESC, created_at DESC
LIMIT ?`

// SearchHybrid runs the two-path knowledge-base search.
func (r *Repository) SearchHybrid(ctx context.Context, tsQuery string, keywords []string, limit int) ([]domain.FAQ, error) {
	var rows []entities.FAQ
	if err := r.db.WithContext(ctx).
		Raw(hybridSearchSQL, tsQuery, tsQuery, pq.StringArray(keywords), limit).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "hybrid FAQ search failed")
	}
	return toDomain(rows), nil
}

// Create inserts the entry and backfills generated fields.
func (r *Repository) Create(ctx context.Context, entry *domain.FAQ) error {
	entity := entities.NewSchemaFAQ(entry)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindStorage, "failed to create FAQ")
	}
	entry.ID = entity.ID
	entry.CreatedAt = entity.CreatedAt
	entry.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches an entry by its ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*domain.FAQ, error) {
	var entity entities.FAQ
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, fmt.Sprintf("FAQ not found: %d", id))
		}
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to fetch FAQ")
	}
	return entity.EtoD(), nil
}

// ListActive returns every active entry ordered by priority then recency.
func (r *Repository) ListActive(ctx context.Context) ([]domain.FAQ, error) {
	var rows []entities.FAQ
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to list FAQs")
	}
	return toDomain(rows), nil
}

// ListByCategory returns active entries in a category.
func (r *Repository) ListByCategory(ctx context.Context, category string, limit int) ([]domain.FAQ, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ? AND category = ?", true, category).
		Order("priority DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.FAQ
	if err := query.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "failed to list FAQs by category")
	}
	return toDomain(rows), nil
}

// Update applies the non-nil fields of update and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uint, update domain.Update) (*domain.FAQ, error) {
	changes := map[string]interface{}{}
	if update.Question != nil {
		changes["question"] = *update.Question
	}
	if update.Answer != nil {
		changes["answer"] = *update.Answer
	}
	if update.Category != nil {
		changes["category"] = *update.Category
	}
	if update.Keywords != nil {
		changes["keywords"] = pq.StringArray(update.Keywords)
	}
	if update.Priority != nil {
		changes["priority"] = *update.Priority
	}
	if update.IsActive != nil {
		changes["is_active"] = *update.IsActive
	}

	if len(changes) > 0 {
		res := r.db.WithContext(ctx).
			Model(&entities.FAQ{}).
			Where("id = ?", id).
			Updates(changes)
		if res.Error != nil {
			return nil, apperrors.Wrap(res.Error, apperrors.KindStorage, "failed to update FAQ")
		}
		if res.RowsAffected == 0 {
			return nil, apperrors.New(apperrors.KindNotFound, fmt.Sprintf("FAQ not found: %d", id))
		}
	}

	return r.FindByID(ctx, id)
}

// Deactivate soft-deletes the entry.
func (r *Repository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&entities.FAQ{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.KindStorage, "failed to deactivate FAQ")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, fmt.Sprintf("FAQ not found: %d", id))
	}
	return nil
}

func toDomain(rows []entities.FAQ) []domain.FAQ {
	out := make([]domain.FAQ, len(rows))
	for i, row := range rows {
		out[i] = *row.EtoD()
	}
	return out
}
