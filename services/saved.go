package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodi/db"
	"foodi/models"

	"gorm.io/gorm"
)

type SavedPostService struct{}

func NewSavedPostService() *SavedPostService {
	return &SavedPostService{}
}

// ToggleSaved переключает закладку пользователя на посте: наличие строки =
// сохранено. Счет и уведомления не трогаются. Возвращает новое состояние.
func (ss *SavedPostService) ToggleSaved(ctx context.Context, userID string, postID string) (saved bool, err error) {
	if userID == "" {
		return false, fmt.Errorf("user not authenticated")
	}

	var post models.Post
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return false, fmt.Errorf("post not found: %w", err)
	}

	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SavedPost
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			saved = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			bookmark := models.SavedPost{
				UserID:    userID,
				PostID:    postID,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&bookmark).Error; err != nil {
				return err
			}
			saved = true
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle saved post: %w", err)
	}
	return saved, nil
}

// IsSaved проверяет, сохранил ли пользователь пост
func (ss *SavedPostService) IsSaved(ctx context.Context, postID string, userID string) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListSaved возвращает сохраненные посты по убыванию времени закладки
func (ss *SavedPostService) ListSaved(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Joins("JOIN saved_posts sp ON sp.post_id = p.id").
		Where("sp.user_id = ?", userID).
		Order("sp.created_at DESC").
		Select("p.*").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved posts: %w", err)
	}
	return posts, nil
}
