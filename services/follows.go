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

type FollowService struct {
	notifications *NotificationService
	posts         *PostService
}

func NewFollowService() *FollowService {
	return &FollowService{
		notifications: NewNotificationService(),
		posts:         NewPostService(),
	}
}

// Follow создает подписку follower -> followee. Ребро и уведомление
// пишутся в одной транзакции, частичного состояния не бывает.
func (fs *FollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return fmt.Errorf("cannot follow yourself")
	}

	// Проверяем, что пользователи существуют
	var userCount int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.User{}).
		Where("id IN (?)", []string{followerID, followeeID}).
		Count(&userCount).Error
	if err != nil {
		return fmt.Errorf("error checking users: %w", err)
	}
	if userCount != 2 {
		return fmt.Errorf("one or both users do not exist")
	}

	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Follow
		err := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("already following")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		edge := models.Follow{
			FollowerID: followerID,
			FolloweeID: followeeID,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(&edge).Error; err != nil {
			return fmt.Errorf("failed to create follow edge: %w", err)
		}

		return fs.notifications.NotifyFollowInTx(ctx, tx, followeeID, followerID)
	})
	if err != nil {
		return err
	}

	// Лента подписчика изменилась
	if RedisClient != nil {
		_ = fs.posts.InvalidateUserFeed(ctx, followerID)
	}
	return nil
}

// Unfollow удаляет подписку
func (fs *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	result := db.GetWriteDB(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to unfollow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("not following")
	}

	if RedisClient != nil {
		_ = fs.posts.InvalidateUserFeed(ctx, followerID)
	}
	return nil
}

// IsFollowing проверяет наличие подписки
func (fs *FollowService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowerCount возвращает количество подписчиков пользователя
func (fs *FollowService) FollowerCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

// FollowingCount возвращает количество подписок пользователя
func (fs *FollowService) FollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Followers возвращает список подписчиков
func (fs *FollowService) Followers(ctx context.Context, userID string) ([]models.User, error) {
	var followers []models.User
	err := db.GetReadOnlyDB(ctx).
		Table("users u").
		Joins("JOIN follows f ON f.follower_id = u.id").
		Where("f.followee_id = ?", userID).
		Select("u.id, u.username, u.full_name, u.profile_pic_url, u.score").
		Find(&followers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return followers, nil
}

// Following возвращает список подписок
func (fs *FollowService) Following(ctx context.Context, userID string) ([]models.User, error) {
	var following []models.User
	err := db.GetReadOnlyDB(ctx).
		Table("users u").
		Joins("JOIN follows f ON f.followee_id = u.id").
		Where("f.follower_id = ?", userID).
		Select("u.id, u.username, u.full_name, u.profile_pic_url, u.score").
		Find(&following).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return following, nil
}
