package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"foodi/db"
	"foodi/models"
)

const (
	DEFAULT_LEADERBOARD_LIMIT = 50
	RANKS_CACHE_KEY           = "leaderboard:ranks"
	RANKS_CACHE_TTL           = time.Minute
)

// LeaderboardUser - строка топа пользователей
type LeaderboardUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Score         int64  `json:"score"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

// RestaurantRank / FoodTypeRank - производные агрегаты, не сохраняются
type RestaurantRank struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type FoodTypeRank struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ranksSnapshot struct {
	Restaurants []RestaurantRank `json:"restaurants"`
	FoodTypes   []FoodTypeRank   `json:"food_types"`
}

type LeaderboardService struct{}

func NewLeaderboardService() *LeaderboardService {
	return &LeaderboardService{}
}

// TopUsers возвращает топ-N пользователей по score.
// Порядок: score DESC, id ASC - тай-брейк по id для детерминированности.
func (ls *LeaderboardService) TopUsers(ctx context.Context, limit int) ([]LeaderboardUser, error) {
	if limit < 1 {
		limit = DEFAULT_LEADERBOARD_LIMIT
	}

	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Model(&models.User{}).
		Order("score DESC, id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	top := make([]LeaderboardUser, 0, len(users))
	for _, u := range users {
		top = append(top, LeaderboardUser{
			ID:            u.ID,
			Username:      u.Username,
			Score:         u.Score,
			ProfilePicURL: u.ProfilePicURL,
		})
	}
	return top, nil
}

// AggregateRanks пересчитывает популярность ресторанов и типов еды по всем
// постам. Пустые и пробельные имена не учитываются; сортировка count DESC,
// при равенстве name ASC. При ошибке чтения возвращаем пустые списки,
// чтобы не блокировать независимые панели лидерборда.
func (ls *LeaderboardService) AggregateRanks(ctx context.Context) ([]RestaurantRank, []FoodTypeRank) {
	if snap, ok := ls.ranksFromCache(ctx); ok {
		return snap.Restaurants, snap.FoodTypes
	}

	var rows []struct {
		Restaurant string
		FoodType   string
	}
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Post{}).
		Select("restaurant, food_type").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Failed to load posts for aggregation: %v", err)
		return []RestaurantRank{}, []FoodTypeRank{}
	}

	restaurantCounts := make(map[string]int64)
	foodTypeCounts := make(map[string]int64)
	for _, row := range rows {
		if name := strings.TrimSpace(row.Restaurant); name != "" {
			restaurantCounts[name]++
		}
		if name := strings.TrimSpace(row.FoodType); name != "" {
			foodTypeCounts[name]++
		}
	}

	restaurants := make([]RestaurantRank, 0, len(restaurantCounts))
	for name, count := range restaurantCounts {
		restaurants = append(restaurants, RestaurantRank{Name: name, Count: count})
	}
	sort.Slice(restaurants, func(i, j int) bool {
		if restaurants[i].Count != restaurants[j].Count {
			return restaurants[i].Count > restaurants[j].Count
		}
		return restaurants[i].Name < restaurants[j].Name
	})

	foodTypes := make([]FoodTypeRank, 0, len(foodTypeCounts))
	for name, count := range foodTypeCounts {
		foodTypes = append(foodTypes, FoodTypeRank{Name: name, Count: count})
	}
	sort.Slice(foodTypes, func(i, j int) bool {
		if foodTypes[i].Count != foodTypes[j].Count {
			return foodTypes[i].Count > foodTypes[j].Count
		}
		return foodTypes[i].Name < foodTypes[j].Name
	})

	go ls.cacheRanks(context.Background(), ranksSnapshot{
		Restaurants: restaurants,
		FoodTypes:   foodTypes,
	})

	return restaurants, foodTypes
}

// ranksFromCache достает снапшот агрегатов из Redis
func (ls *LeaderboardService) ranksFromCache(ctx context.Context) (ranksSnapshot, bool) {
	var snap ranksSnapshot
	if RedisClient == nil {
		return snap, false
	}

	data, err := RedisClient.Get(ctx, RANKS_CACHE_KEY).Result()
	if err != nil {
		return snap, false
	}
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return snap, false
	}
	if snap.Restaurants == nil {
		snap.Restaurants = []RestaurantRank{}
	}
	if snap.FoodTypes == nil {
		snap.FoodTypes = []FoodTypeRank{}
	}
	return snap, true
}

// cacheRanks кеширует снапшот с коротким TTL
func (ls *LeaderboardService) cacheRanks(ctx context.Context, snap ranksSnapshot) {
	if RedisClient == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	RedisClient.Set(ctx, RANKS_CACHE_KEY, data, RANKS_CACHE_TTL)
}

// InvalidateRanks сбрасывает кеш агрегатов (вызывается при создании/удалении поста)
func (ls *LeaderboardService) InvalidateRanks(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, RANKS_CACHE_KEY)
}
