package handlers

import (
	"net/http"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var followService = services.NewFollowService()

// Follow подписывает текущего пользователя на другого
func Follow(c *gin.Context) {
	followeeID := c.Param("user_id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := followService.Follow(c.Request.Context(), userID.(string), followeeID)
	if err != nil {
		switch err.Error() {
		case "cannot follow yourself", "already following":
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case "one or both users do not exist":
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Followed successfully"})
}

// Unfollow отписывает текущего пользователя
func Unfollow(c *gin.Context) {
	followeeID := c.Param("user_id")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := followService.Unfollow(c.Request.Context(), userID.(string), followeeID)
	if err != nil {
		if err.Error() == "not following" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

// GetFollowers возвращает подписчиков пользователя
func GetFollowers(c *gin.Context) {
	userID := c.Param("user_id")

	followers, err := followService.Followers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get followers"})
		return
	}

	userInfos := make([]UserInfo, 0, len(followers))
	for i := range followers {
		userInfos = append(userInfos, userInfoFrom(&followers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"followers": userInfos})
}

// GetFollowing возвращает подписки пользователя
func GetFollowing(c *gin.Context) {
	userID := c.Param("user_id")

	following, err := followService.Following(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get following"})
		return
	}

	userInfos := make([]UserInfo, 0, len(following))
	for i := range following {
		userInfos = append(userInfos, userInfoFrom(&following[i]))
	}
	c.JSON(http.StatusOK, gin.H{"following": userInfos})
}

// GetFollowStatus возвращает счетчики и статус подписки текущего пользователя
func GetFollowStatus(c *gin.Context) {
	targetID := c.Param("user_id")

	followerCount, err := followService.FollowerCount(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get follow status"})
		return
	}
	followingCount, err := followService.FollowingCount(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get follow status"})
		return
	}

	isFollowing := false
	if userID, exists := c.Get("user_id"); exists {
		isFollowing, _ = followService.IsFollowing(c.Request.Context(), userID.(string), targetID)
	}

	c.JSON(http.StatusOK, gin.H{
		"followers":    followerCount,
		"following":    followingCount,
		"is_following": isFollowing,
	})
}
