package models

import (
	"time"

	"gorm.io/datatypes"
)

// Канонические имена счетчиков в metrics (старые алиасы не сохраняем)
const (
	MetricPostsCount    = "postsCount"
	MetricLikesGiven    = "likesGiven"
	MetricLikesReceived = "likesReceived"
	MetricCommentsCount = "commentsCount"
	MetricCurrentStreak = "currentStreak"
	MetricLongestStreak = "longestStreak"
	MetricLastPostDate  = "lastPostDate"
)

// User - документ пользователя с игровым счетом и счетчиками действий
type User struct {
	ID                   string            `gorm:"primaryKey;size:36" json:"id"`
	Username             string            `gorm:"size:60;uniqueIndex" json:"username"`
	FullName             string            `gorm:"size:255" json:"full_name"`
	Bio                  string            `gorm:"type:text" json:"bio"`
	ProfilePicURL        string            `gorm:"size:512" json:"profile_pic_url"`
	NotificationsEnabled bool              `gorm:"default:true" json:"notifications_enabled"`
	Password             string            `gorm:"size:255" json:"-"`
	Score                int64             `gorm:"not null;default:0;index" json:"score"`
	Metrics              datatypes.JSONMap `json:"metrics"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type UserTokens struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"size:36;index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserTokens) TableName() string {
	return "user_tokens"
}

// BaselineMetrics возвращает нулевые счетчики для нового пользователя
func BaselineMetrics() datatypes.JSONMap {
	return datatypes.JSONMap{
		MetricPostsCount:    int64(0),
		MetricLikesGiven:    int64(0),
		MetricLikesReceived: int64(0),
		MetricCommentsCount: int64(0),
		MetricCurrentStreak: int64(0),
		MetricLongestStreak: int64(0),
		MetricLastPostDate:  "",
	}
}

// MetricValue читает счетчик из JSONB-карты (после чтения из БД числа
// приходят как float64)
func MetricValue(m datatypes.JSONMap, name string) int64 {
	if m == nil {
		return 0
	}
	switch v := m[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// MetricString читает строковое поле metrics (lastPostDate)
func MetricString(m datatypes.JSONMap, name string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[name].(string); ok {
		return s
	}
	return ""
}
