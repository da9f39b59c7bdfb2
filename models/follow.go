package models

import "time"

// Follow - направленная подписка follower -> followee.
// Одна строка заменяет пару документов followers/following и
// создается/удаляется в одной транзакции с уведомлением.
type Follow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID string    `gorm:"size:36;index:follow_edge_idx,unique;index" json:"follower_id"`
	FolloweeID string    `gorm:"size:36;index:follow_edge_idx,unique;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
