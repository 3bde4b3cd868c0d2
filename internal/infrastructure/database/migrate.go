package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/supportchat/chat-api/internal/infrastructure/database/entities"
)

// postMigrateDDL holds schema pieces GORM's AutoMigrate cannot express: the
// generated tsvector column and the GIN indexes backing hybrid FAQ search.
var postMigrateDDL = []string{
	`ALTER TABLE faqs ADD COLUMN IF NOT EXISTS search_vector tsvector
		GENERATED ALWAYS AS (to_tsvector('english', question || ' ' || answer)) STORED`,
	`CREATE INDEX IF NOT EXISTS idx_faqs_search_vector ON faqs USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS idx_faqs_keywords ON faqs USING GIN (keywords)`,
}

// AutoMigrate applies database schema changes for the chat domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Conversation{},
		&entities.Message{},
		&entities.FAQ{},
	); err != nil {
		return err
	}

	for _, ddl := range postMigrateDDL {
		if err := db.WithContext(ctx).Exec(ddl).Error; err != nil {
			return err
		}
	}

	log.Info().Msg("database schema up to date")
	return nil
}
