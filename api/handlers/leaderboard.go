package handlers

import (
	"log"
	"net/http"
	"strconv"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var leaderboardService = services.NewLeaderboardService()

// GetLeaderboard возвращает три панели лидерборда: топ пользователей,
// популярные рестораны и типы еды.
func GetLeaderboard(c *gin.Context) {
	limit := services.DEFAULT_LEADERBOARD_LIMIT
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	// Панели независимы: отказ одной не прячет остальные
	users, err := leaderboardService.TopUsers(c.Request.Context(), limit)
	if err != nil {
		log.Printf("Failed to get top users: %v", err)
		users = []services.LeaderboardUser{}
	}

	restaurants, foodTypes := leaderboardService.AggregateRanks(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"restaurants": restaurants,
		"food_types":  foodTypes,
	})
}

// GetTopUsers возвращает только топ пользователей
func GetTopUsers(c *gin.Context) {
	limit := services.DEFAULT_LEADERBOARD_LIMIT
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	users, err := leaderboardService.TopUsers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get top users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetRanks возвращает агрегаты по ресторанам и типам еды
func GetRanks(c *gin.Context) {
	restaurants, foodTypes := leaderboardService.AggregateRanks(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"food_types":  foodTypes,
	})
}
