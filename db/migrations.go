package db

import (
	"fmt"

	"gorm.io/gorm"
)

// CreateLeaderboardIndexes создает индексы под запросы лидерборда и лент.
// score DESC, id ASC - детерминированный порядок топа при равных очках.
func CreateLeaderboardIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{
			"idx_users_score_id",
			`CREATE INDEX IF NOT EXISTS idx_users_score_id ON users (score DESC, id ASC);`,
		},
		{
			"idx_posts_author_created_at",
			`CREATE INDEX IF NOT EXISTS idx_posts_author_created_at ON posts (author_id, created_at DESC);`,
		},
		{
			"idx_notifications_user_read",
			`CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications (user_id, read, created_at DESC);`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
