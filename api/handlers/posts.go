package handlers

import (
	"net/http"
	"strconv"
	"time"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var postService = services.NewPostService()

// parseBefore разбирает курсор пагинации (unix timestamp в секундах)
func parseBefore(c *gin.Context) time.Time {
	beforeStr := c.Query("before")
	if beforeStr == "" {
		return time.Time{}
	}
	if ts, err := strconv.ParseInt(beforeStr, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}

func parseLimit(c *gin.Context) int {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return limit
}

// CreatePost создает новый пост
func CreatePost(c *gin.Context) {
	var req services.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Получаем ID пользователя из контекста (установлен middleware)
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	post, err := postService.CreatePost(c.Request.Context(), userID.(string), req)
	if err != nil {
		if post == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Пост создан, но очки не начислились
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update score"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost возвращает один пост
func GetPost(c *gin.Context) {
	postID := c.Param("post_id")
	post, err := postService.GetPost(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost удаляет пост
func DeletePost(c *gin.Context) {
	postID := c.Param("post_id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := postService.DeletePost(c.Request.Context(), userID.(string), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// ListPosts возвращает глобальную ленту постов
func ListPosts(c *gin.Context) {
	posts, err := postService.ListRecentPosts(c.Request.Context(), parseBefore(c), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListUserPosts возвращает посты конкретного пользователя
func ListUserPosts(c *gin.Context) {
	authorID := c.Param("user_id")
	posts, err := postService.ListPostsByAuthor(c.Request.Context(), authorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListRestaurantPosts возвращает посты о конкретном ресторане
func ListRestaurantPosts(c *gin.Context) {
	restaurant := c.Query("name")
	if restaurant == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant name is required"})
		return
	}

	posts, err := postService.ListPostsByRestaurant(c.Request.Context(), restaurant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetFeed получает ленту подписок пользователя
func GetFeed(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	feed, err := postService.GetUserFeed(c.Request.Context(), userID.(string), parseBefore(c), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feed"})
		return
	}

	c.JSON(http.StatusOK, feed)
}

// InvalidateUserFeed инвалидирует кеш ленты пользователя (админский эндпоинт)
func InvalidateUserFeed(c *gin.Context) {
	userID := c.Param("user_id")

	err := postService.InvalidateUserFeed(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cache invalidated successfully"})
}

// RebuildUserFeed перестраивает кеш ленты пользователя из БД (админский эндпоинт)
func RebuildUserFeed(c *gin.Context) {
	userID := c.Param("user_id")

	err := postService.RebuildUserFeedFromDB(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebuild feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feed rebuilt successfully"})
}

// GetQueueStats возвращает статистику очереди (админский эндпоинт)
func GetQueueStats(c *gin.Context) {
	if services.QueueServiceInstance == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue service not available"})
		return
	}

	queueLength, err := services.QueueServiceInstance.GetQueueStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get queue stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue_length": queueLength,
		"workers":      services.QUEUE_WORKER_COUNT,
	})
}
