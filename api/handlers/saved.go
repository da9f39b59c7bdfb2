package handlers

import (
	"net/http"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var savedPostService = services.NewSavedPostService()

// ToggleSaved переключает закладку текущего пользователя на посте
func ToggleSaved(c *gin.Context) {
	postID := c.Param("post_id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saved, err := savedPostService.ToggleSaved(c.Request.Context(), userID.(string), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle saved post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// GetSavedStatus возвращает, сохранен ли пост текущим пользователем
func GetSavedStatus(c *gin.Context) {
	postID := c.Param("post_id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saved, err := savedPostService.IsSaved(c.Request.Context(), postID, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get saved status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// ListSavedPosts возвращает закладки текущего пользователя
func ListSavedPosts(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	posts, err := savedPostService.ListSaved(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list saved posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
