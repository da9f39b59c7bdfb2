package models

import "time"

// Post - модель поста о еде. Поле restaurant каноническое
// (restaurantName из старых ревизий не поддерживаем).
type Post struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Title      string     `gorm:"size:255" json:"title"`
	Content    string     `gorm:"type:text" json:"content"`
	ImageURL   string     `gorm:"size:512" json:"image_url,omitempty"`
	Author     string     `gorm:"size:60" json:"author"`
	AuthorID   string     `gorm:"size:36;index" json:"author_id"`
	Restaurant string     `gorm:"size:255;index" json:"restaurant,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	FoodType   string     `gorm:"size:60;index" json:"food_type,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Like - отметка "нравится", одна на пользователя (наличие строки = лайк)
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"size:36;index:post_user_like_idx,unique" json:"post_id"`
	UserID    string    `gorm:"size:36;index:post_user_like_idx,unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// Comment - комментарий к посту, только добавление, сортировка по времени
type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PostID     string    `gorm:"size:36;index" json:"post_id"`
	AuthorID   string    `gorm:"size:36" json:"author_id"`
	AuthorName string    `gorm:"size:60" json:"author_name"`
	Text       string    `gorm:"type:text" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// FeedPost - структура для ленты с дополнительной информацией о пользователе
type FeedPost struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Author     string    `json:"author"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	Restaurant string    `json:"restaurant,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedResponse - ответ API для ленты
type FeedResponse struct {
	Posts   []FeedPost `json:"posts"`
	HasMore bool       `json:"has_more"`
}
