package services

import (
	"context"
	"testing"
	"time"

	"foodi/db"
	"foodi/models"

	"github.com/stretchr/testify/require"
)

func createTestPost(t *testing.T, id, authorID string) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        id,
		Title:     "Best ramen in town",
		Content:   "Rich broth, perfect noodles",
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	if err := db.ORM.Create(post).Error; err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func TestToggleLikeOnOff(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()

	createTestUser(t, "author", "alice")
	createTestUser(t, "fan", "bob")
	createTestPost(t, "p1", "author")

	liked, count, err := ls.ToggleLike(ctx, "fan", "p1")
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, int64(1), count)

	// Актор получает +1 очко за лайк
	fan := loadUser(t, "fan")
	require.Equal(t, int64(1), fan.Score)
	require.Equal(t, int64(1), models.MetricValue(fan.Metrics, models.MetricLikesGiven))

	// Автору двигается только счетчик likesReceived, без очков
	author := loadUser(t, "author")
	require.Equal(t, int64(0), author.Score)
	require.Equal(t, int64(1), models.MetricValue(author.Metrics, models.MetricLikesReceived))

	// Повторный вызов снимает лайк и откатывает счетчики
	liked, count, err = ls.ToggleLike(ctx, "fan", "p1")
	require.NoError(t, err)
	require.False(t, liked)
	require.Equal(t, int64(0), count)

	fan = loadUser(t, "fan")
	require.Equal(t, int64(0), fan.Score)
	require.Equal(t, int64(0), models.MetricValue(fan.Metrics, models.MetricLikesGiven))

	author = loadUser(t, "author")
	require.Equal(t, int64(0), models.MetricValue(author.Metrics, models.MetricLikesReceived))
}

func TestToggleLikeNotifiesAuthor(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()

	createTestUser(t, "author", "alice")
	createTestUser(t, "fan", "bob")
	createTestPost(t, "p1", "author")

	_, _, err := ls.ToggleLike(ctx, "fan", "p1")
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.ORM.Where("user_id = ?", "author").Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationLike, notifications[0].Type)
	require.Equal(t, "bob", notifications[0].FromUsername)
	require.Equal(t, "p1", notifications[0].PostID)
}

func TestToggleLikeOwnPostNoNotification(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()

	createTestUser(t, "author", "alice")
	createTestPost(t, "p1", "author")

	liked, _, err := ls.ToggleLike(ctx, "author", "p1")
	require.NoError(t, err)
	require.True(t, liked)

	var count int64
	require.NoError(t, db.ORM.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestToggleLikeMissingPost(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()

	createTestUser(t, "fan", "bob")

	_, _, err := ls.ToggleLike(ctx, "fan", "ghost-post")
	require.Error(t, err)
}

func TestHasLiked(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ls := NewLikeService()

	createTestUser(t, "author", "alice")
	createTestUser(t, "fan", "bob")
	createTestPost(t, "p1", "author")

	liked, err := ls.HasLiked(ctx, "p1", "fan")
	require.NoError(t, err)
	require.False(t, liked)

	_, _, err = ls.ToggleLike(ctx, "fan", "p1")
	require.NoError(t, err)

	liked, err = ls.HasLiked(ctx, "p1", "fan")
	require.NoError(t, err)
	require.True(t, liked)
}
