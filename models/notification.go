package models

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification - уведомление получателя; меняется только флаг read
type Notification struct {
	ID           string           `gorm:"primaryKey;size:36" json:"id"`
	UserID       string           `gorm:"size:36;index" json:"user_id"`
	Type         NotificationType `gorm:"size:20" json:"type"`
	FromUserID   string           `gorm:"size:36" json:"from_user_id"`
	FromUsername string           `gorm:"size:60" json:"from_username"`
	PostID       string           `gorm:"size:36" json:"post_id,omitempty"`
	CommentText  string           `gorm:"size:120" json:"comment_text,omitempty"`
	Read         bool             `gorm:"default:false;index" json:"read"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
