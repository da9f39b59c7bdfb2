package handlers

import (
	"net/http"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var commentService = services.NewCommentService()

// AddComment добавляет комментарий к посту
func AddComment(c *gin.Context) {
	postID := c.Param("post_id")

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	comment, err := commentService.AddComment(c.Request.Context(), userID.(string), postID, req.Text)
	if err != nil {
		if comment == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update score"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments возвращает комментарии поста
func ListComments(c *gin.Context) {
	postID := c.Param("post_id")

	comments, err := commentService.ListComments(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
