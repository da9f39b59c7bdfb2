package services

import (
	"context"
	"testing"

	"foodi/db"
	"foodi/models"

	"github.com/stretchr/testify/require"
)

func TestFollowCreatesEdgeAndNotification(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "u1", "alice")
	createTestUser(t, "u2", "bob")

	require.NoError(t, fs.Follow(ctx, "u1", "u2"))

	following, err := fs.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, following)

	// Обратного ребра нет
	reverse, err := fs.IsFollowing(ctx, "u2", "u1")
	require.NoError(t, err)
	require.False(t, reverse)

	var notifications []models.Notification
	require.NoError(t, db.ORM.Where("user_id = ?", "u2").Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationFollow, notifications[0].Type)
	require.Equal(t, "alice", notifications[0].FromUsername)
}

func TestFollowSelf(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "u1", "alice")

	require.Error(t, fs.Follow(ctx, "u1", "u1"))
}

func TestFollowMissingUser(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "u1", "alice")

	require.Error(t, fs.Follow(ctx, "u1", "ghost"))
}

func TestFollowDuplicate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "u1", "alice")
	createTestUser(t, "u2", "bob")

	require.NoError(t, fs.Follow(ctx, "u1", "u2"))
	require.Error(t, fs.Follow(ctx, "u1", "u2"))

	// Повторная подписка не плодит уведомлений
	var count int64
	require.NoError(t, db.ORM.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUnfollow(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "u1", "alice")
	createTestUser(t, "u2", "bob")

	require.NoError(t, fs.Follow(ctx, "u1", "u2"))
	require.NoError(t, fs.Unfollow(ctx, "u1", "u2"))

	following, err := fs.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	require.False(t, following)

	// Отписка без подписки - ошибка
	require.Error(t, fs.Unfollow(ctx, "u1", "u2"))
}

func TestFollowCounts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "star", "alice")
	createTestUser(t, "fan1", "bob")
	createTestUser(t, "fan2", "carol")

	require.NoError(t, fs.Follow(ctx, "fan1", "star"))
	require.NoError(t, fs.Follow(ctx, "fan2", "star"))

	followers, err := fs.FollowerCount(ctx, "star")
	require.NoError(t, err)
	require.Equal(t, int64(2), followers)

	following, err := fs.FollowingCount(ctx, "fan1")
	require.NoError(t, err)
	require.Equal(t, int64(1), following)

	list, err := fs.Followers(ctx, "star")
	require.NoError(t, err)
	require.Len(t, list, 2)

	mine, err := fs.Following(ctx, "fan1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "alice", mine[0].Username)
}

func TestFollowDisabledNotifications(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService()

	createTestUser(t, "u1", "alice")
	quiet := createTestUser(t, "u2", "bob")
	quiet.NotificationsEnabled = false
	require.NoError(t, db.ORM.Model(quiet).Update("notifications_enabled", false).Error)

	require.NoError(t, fs.Follow(ctx, "u1", "u2"))

	// Подписка создана, уведомление подавлено настройкой получателя
	following, err := fs.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, following)

	var count int64
	require.NoError(t, db.ORM.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
