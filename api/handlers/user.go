package handlers

import (
	"net/http"
	"strconv"

	"foodi/models"
	"foodi/services"

	"github.com/gin-gonic/gin"
)

type UserInfo struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	FullName             string `json:"full_name"`
	Bio                  string `json:"bio,omitempty"`
	ProfilePicURL        string `json:"profile_pic_url,omitempty"`
	Score                int64  `json:"score"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func userInfoFrom(user *models.User) UserInfo {
	return UserInfo{
		ID:                   user.ID,
		Username:             user.Username,
		FullName:             user.FullName,
		Bio:                  user.Bio,
		ProfilePicURL:        user.ProfilePicURL,
		Score:                user.Score,
		NotificationsEnabled: user.NotificationsEnabled,
	}
}

func UserGet(c *gin.Context) {
	idParam := c.Param("id")
	if idParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	user, err := userService.GetByID(c.Request.Context(), idParam)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userInfoFrom(user)})
}

func UserSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query parameter 'q' is required"})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	users, err := userService.Search(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	userInfos := make([]UserInfo, 0, len(users))
	for i := range users {
		userInfos = append(userInfos, userInfoFrom(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{"users": userInfos})
}

// GetProfile возвращает профиль текущего пользователя со счетчиками
func GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := userService.GetByID(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    userInfoFrom(user),
		"metrics": user.Metrics,
	})
}

// UpdateSettings частично обновляет настройки профиля
func UpdateSettings(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := userService.UpdateSettings(c.Request.Context(), userID.(string), req); err != nil {
		if err.Error() == "user not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully"})
}

// GetFoodTypes возвращает справочник типов еды
func GetFoodTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"food_types": models.FoodTypes})
}
