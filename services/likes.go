package services

import (
	"context"
	"errors"
	"fmt"

	"foodi/db"
	"foodi/models"

	"gorm.io/gorm"
)

type LikeService struct {
	scores        *ScoreService
	notifications *NotificationService
}

func NewLikeService() *LikeService {
	return &LikeService{
		scores:        NewScoreService(),
		notifications: NewNotificationService(),
	}
}

// ToggleLike переключает лайк пользователя на посте: наличие строки = лайк.
// Актору двигается likesGiven (со счетом +-1), автору поста - likesReceived
// (без очков). Возвращает новое состояние и количество лайков.
func (ls *LikeService) ToggleLike(ctx context.Context, userID string, postID string) (liked bool, count int64, err error) {
	if userID == "" {
		return false, 0, fmt.Errorf("user not authenticated")
	}

	var post models.Post
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return false, 0, fmt.Errorf("post not found: %w", err)
	}

	var delta int64
	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			// Анлайк
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			delta = -1
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.Like{PostID: postID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			delta = 1
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	liked = delta > 0

	if err := ls.scores.BumpOnLikeDelta(ctx, userID, delta); err != nil {
		return liked, 0, err
	}
	if err := ls.scores.ApplyDelta(ctx, post.AuthorID, models.MetricLikesReceived, 0, delta); err != nil {
		return liked, 0, err
	}

	if liked && post.AuthorID != userID {
		ls.notifications.NotifyLike(ctx, post.AuthorID, userID, postID)
	}

	count, err = ls.LikeCount(ctx, postID)
	return liked, count, err
}

// LikeCount возвращает количество лайков поста
func (ls *LikeService) LikeCount(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// HasLiked проверяет, лайкнул ли пользователь пост
func (ls *LikeService) HasLiked(ctx context.Context, postID string, userID string) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
