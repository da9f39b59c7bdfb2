package models

import "time"

// SavedPost - закладка пользователя на пост (наличие строки = сохранено).
// Закладки приватны: ни очков, ни уведомлений.
type SavedPost struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"size:36;index:user_saved_idx,unique" json:"user_id"`
	PostID    string    `gorm:"size:36;index:user_saved_idx,unique" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedPost) TableName() string {
	return "saved_posts"
}
