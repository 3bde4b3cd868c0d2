package entities

import (
	"time"

	"github.com/lib/pq"

	"github.com/supportchat/chat-api/internal/domain/faq"
)

// FAQ is the database schema for knowledge-base entries. The search_vector
// column backing full-text search is a generated column managed by raw DDL in
// migrate.go, so it is intentionally absent here.
type FAQ struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Question string         `gorm:"type:text;not null"`
	Answer   string         `gorm:"type:text;not null"`
	Category *string        `gorm:"type:varchar(100);index"`
	Keywords pq.StringArray `gorm:"type:text[]"`
	Priority int            `gorm:"not null;default:0"`
	IsActive bool           `gorm:"not null;default:true;index"`
}

// TableName specifies the table name for FAQ.
func (FAQ) TableName() string {
	return "faqs"
}

// EtoD converts the database entity to the domain model.
func (f *FAQ) EtoD() *faq.FAQ {
	return &faq.FAQ{
		ID:        f.ID,
		Question:  f.Question,
		Answer:    f.Answer,
		Category:  f.Category,
		Keywords:  []string(f.Keywords),
		Priority:  f.Priority,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// NewSchemaFAQ creates a database entity from the domain model.
func NewSchemaFAQ(f *faq.FAQ) *FAQ {
	return &FAQ{
		ID:       f.ID,
		Question: f.Question,
		Answer:   f.Answer,
		Category: f.Category,
		Keywords: pq.StringArray(f.Keywords),
		Priority: f.Priority,
		IsActive: f.IsActive,
	}
}
