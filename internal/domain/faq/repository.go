package faq

import "context"

// Repository persists FAQ entries and runs the hybrid search against the
// knowledge base.
type Repository interface {
	Create(ctx context.Context, entry *FAQ) error
	FindByID(ctx context.Context, id uint) (*FAQ, error)
	// SearchHybrid matches active entries whose question+answer text matches
	// the disjunctive tsquery or whose keyword tags intersect keywords,
	// ranked by text relevance then priority then recency, capped at limit.
	SearchHybrid(ctx context.Context, tsQuery string, keywords []string, limit int) ([]FAQ, error)
	ListActive(ctx context.Context) ([]FAQ, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]FAQ, error)
	Update(ctx context.Context, id uint, update Update) (*FAQ, error)
	Deactivate(ctx context.Context, id uint) error
}
