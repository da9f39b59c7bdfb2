package handlers

import (
	"net/http"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var likeService = services.NewLikeService()

// ToggleLike переключает лайк текущего пользователя на посте
func ToggleLike(c *gin.Context) {
	postID := c.Param("post_id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	liked, count, err := likeService.ToggleLike(c.Request.Context(), userID.(string), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":      liked,
		"like_count": count,
	})
}

// GetLikes возвращает количество лайков поста и статус текущего пользователя
func GetLikes(c *gin.Context) {
	postID := c.Param("post_id")

	count, err := likeService.LikeCount(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count likes"})
		return
	}

	liked := false
	if userID, exists := c.Get("user_id"); exists {
		liked, _ = likeService.HasLiked(c.Request.Context(), postID, userID.(string))
	}

	c.JSON(http.StatusOK, gin.H{
		"like_count": count,
		"liked":      liked,
	})
}
