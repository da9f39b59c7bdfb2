package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"foodi/db"
	"foodi/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FEED_CACHE_TTL  = 24 * time.Hour // TTL для кеша ленты
	MAX_FEED_SIZE   = 1000           // Максимальное количество постов в ленте
	FEED_KEY_PREFIX = "user_feed:"   // Префикс для ключей ленты в Redis
	POST_KEY_PREFIX = "post:"        // Префикс для кеша постов
)

// CreatePostInput - входные данные нового поста
type CreatePostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	ImageURL   string   `json:"image_url"`
	Restaurant string   `json:"restaurant"`
	Rating     *float64 `json:"rating"`
	FoodType   string   `json:"food_type"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

type PostService struct {
	scores       *ScoreService
	leaderboards *LeaderboardService
}

func NewPostService() *PostService {
	return &PostService{
		scores:       NewScoreService(),
		leaderboards: NewLeaderboardService(),
	}
}

// CreatePost создает пост, начисляет очки автору и обновляет ленты подписчиков
func (ps *PostService) CreatePost(ctx context.Context, userID string, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("title and content are required")
	}
	if in.FoodType != "" && !models.IsValidFoodType(in.FoodType) {
		return nil, fmt.Errorf("unknown food type: %s", in.FoodType)
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return nil, fmt.Errorf("rating must be between 0 and 5")
	}

	var author models.User
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", userID).First(&author).Error; err != nil {
		return nil, fmt.Errorf("author not found: %w", err)
	}

	post := &models.Post{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		ImageURL:   in.ImageURL,
		Author:     author.Username,
		AuthorID:   userID,
		Restaurant: strings.TrimSpace(in.Restaurant),
		Rating:     in.Rating,
		FoodType:   in.FoodType,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		CreatedAt:  time.Now(),
	}

	if err := db.GetWriteDB(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Начисление очков и серия - ошибки не глотаем
	if err := ps.scores.BumpOnPostCreated(ctx, userID); err != nil {
		return post, err
	}
	if err := ps.scores.UpdateStreakOnPost(ctx, userID, post.CreatedAt); err != nil {
		return post, err
	}

	ps.leaderboards.InvalidateRanks(ctx)

	// Добавляем задачу обновления лент в очередь
	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedUpdate(context.Background(), userID, *post, "create")
	} else {
		// Fallback - обновляем ленты синхронно, если очередь не инициализирована
		go ps.updateFollowersFeeds(context.Background(), userID, post)
	}

	return post, nil
}

// DeletePost удаляет пост вместе с лайками и комментариями и откатывает очки.
// Удалять может только автор.
func (ps *PostService) DeletePost(ctx context.Context, userID string, postID string) error {
	var post models.Post
	err := db.GetWriteDB(ctx).Where("id = ? AND author_id = ?", postID, userID).First(&post).Error
	if err != nil {
		return fmt.Errorf("post not found or access denied: %w", err)
	}

	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if err := ps.scores.BumpOnPostDeleted(ctx, userID); err != nil {
		return err
	}

	ps.leaderboards.InvalidateRanks(ctx)

	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedUpdate(context.Background(), userID, post, "delete")
	} else {
		go ps.removePostFromAllFeeds(context.Background(), userID, postID)
	}

	return nil
}

// GetPost возвращает один пост по id
func (ps *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}
	return &post, nil
}

// ListRecentPosts возвращает глобальную ленту (все посты по убыванию времени)
func (ps *PostService) ListRecentPosts(ctx context.Context, before time.Time, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := db.GetReadOnlyDB(ctx).
		Model(&models.Post{}).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListPostsByAuthor возвращает посты пользователя по убыванию времени
func (ps *PostService) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	return posts, nil
}

// ListPostsByRestaurant возвращает посты о конкретном ресторане
func (ps *PostService) ListPostsByRestaurant(ctx context.Context, restaurant string) ([]models.Post, error) {
	restaurant = strings.TrimSpace(restaurant)
	if restaurant == "" {
		return []models.Post{}, nil
	}

	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Where("restaurant = ?", restaurant).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by restaurant: %w", err)
	}
	return posts, nil
}

// GetUserFeed получает ленту подписок пользователя с пагинацией
func (ps *PostService) GetUserFeed(ctx context.Context, userID string, before time.Time, limit int) (*models.FeedResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	feedKey := FEED_KEY_PREFIX + userID

	// Пытаемся получить из кеша
	feedPosts, err := ps.getFeedFromCache(ctx, feedKey, before, limit)
	if err == nil && len(feedPosts) > 0 {
		return &models.FeedResponse{
			Posts:   feedPosts,
			HasMore: len(feedPosts) == limit,
		}, nil
	}

	// Если в кеше нет или ошибка, строим ленту из БД
	feedPosts, err = ps.buildFeedFromDB(ctx, userID, before, limit)
	if err != nil {
		return nil, err
	}

	// Кешируем результат
	go ps.cacheFeed(context.Background(), feedKey, feedPosts)

	return &models.FeedResponse{
		Posts:   feedPosts,
		HasMore: len(feedPosts) == limit,
	}, nil
}

// buildFeedFromDB строит ленту из базы данных: свои посты плюс посты тех,
// на кого подписан пользователь
func (ps *PostService) buildFeedFromDB(ctx context.Context, userID string, before time.Time, limit int) ([]models.FeedPost, error) {
	var followeeIDs []string
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &followeeIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followees: %w", err)
	}

	followeeIDs = append(followeeIDs, userID)

	query := db.GetReadOnlyDB(ctx).
		Model(&models.Post{}).
		Where("author_id IN ?", followeeIDs).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get feed posts: %w", err)
	}

	feedPosts := make([]models.FeedPost, 0, len(posts))
	for _, post := range posts {
		feedPosts = append(feedPosts, feedPostFrom(post))
	}
	return feedPosts, nil
}

func feedPostFrom(post models.Post) models.FeedPost {
	return models.FeedPost{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		Author:     post.Author,
		Title:      post.Title,
		Content:    post.Content,
		ImageURL:   post.ImageURL,
		Restaurant: post.Restaurant,
		CreatedAt:  post.CreatedAt,
	}
}

// getFeedFromCache получает ленту из Redis кеша (sorted set, score = timestamp)
func (ps *PostService) getFeedFromCache(ctx context.Context, feedKey string, before time.Time, limit int) ([]models.FeedPost, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	max := "+inf"
	if !before.IsZero() {
		max = fmt.Sprintf("(%d", before.Unix())
	}

	postIDs, err := RedisClient.ZRevRangeByScore(ctx, feedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   max,
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(postIDs) == 0 {
		return []models.FeedPost{}, nil
	}

	// Получаем данные постов из кеша
	pipe := RedisClient.Pipeline()
	cmds := make([]*redis.StringCmd, len(postIDs))
	for i, postID := range postIDs {
		cmds[i] = pipe.Get(ctx, POST_KEY_PREFIX+postID)
	}

	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, err
	}

	var feedPosts []models.FeedPost
	for _, cmd := range cmds {
		val, err := cmd.Result()
		if err != nil {
			continue
		}

		var feedPost models.FeedPost
		if err := json.Unmarshal([]byte(val), &feedPost); err == nil {
			feedPosts = append(feedPosts, feedPost)
		}
	}

	return feedPosts, nil
}

// cacheFeed кеширует ленту в Redis
func (ps *PostService) cacheFeed(ctx context.Context, feedKey string, posts []models.FeedPost) {
	if len(posts) == 0 || RedisClient == nil {
		return
	}

	pipe := RedisClient.Pipeline()
	pipe.Del(ctx, feedKey)

	for _, post := range posts {
		pipe.ZAdd(ctx, feedKey, &redis.Z{
			Score:  float64(post.CreatedAt.Unix()),
			Member: post.ID,
		})

		postData, _ := json.Marshal(post)
		pipe.Set(ctx, POST_KEY_PREFIX+post.ID, postData, FEED_CACHE_TTL)
	}

	// Ограничиваем размер ленты
	pipe.ZRemRangeByRank(ctx, feedKey, 0, -MAX_FEED_SIZE-1)
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)

	pipe.Exec(ctx)
}

// updateFollowersFeeds обновляет ленты подписчиков при создании нового поста
func (ps *PostService) updateFollowersFeeds(ctx context.Context, userID string, post *models.Post) {
	var followerIDs []string
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		log.Printf("Failed to get followers for user %s: %v", userID, err)
		return
	}

	feedPost := feedPostFrom(*post)

	for _, followerID := range followerIDs {
		ps.addPostToUserFeed(ctx, followerID, feedPost)

		// Публикуем событие в RabbitMQ для push feed
		err := PublishFeedEvent(ctx, FeedEvent{
			UserID:     followerID,
			PostID:     post.ID,
			AuthorID:   post.AuthorID,
			Author:     post.Author,
			Title:      post.Title,
			Restaurant: post.Restaurant,
			CreatedAt:  post.CreatedAt,
		})

		// Fallback: если RabbitMQ недоступен, отправляем напрямую через WebSocket
		if err != nil {
			ps.sendDirectWSEvent(followerID, post)
		}
	}

	// Добавляем в свою ленту тоже
	ps.addPostToUserFeed(ctx, userID, feedPost)
}

// sendDirectWSEvent отправляет WebSocket событие напрямую (fallback для RabbitMQ)
func (ps *PostService) sendDirectWSEvent(userID string, post *models.Post) {
	pushMsg := struct {
		Event      string    `json:"event"`
		UserID     string    `json:"user_id"`
		PostID     string    `json:"post_id"`
		AuthorID   string    `json:"author_id"`
		Author     string    `json:"author"`
		Title      string    `json:"title"`
		Restaurant string    `json:"restaurant,omitempty"`
		CreatedAt  time.Time `json:"created_at"`
	}{
		Event:      "feed_posted",
		UserID:     userID,
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		Author:     post.Author,
		Title:      post.Title,
		Restaurant: post.Restaurant,
		CreatedAt:  post.CreatedAt,
	}

	if pushData, err := json.Marshal(pushMsg); err == nil {
		GlobalWSConnManager.Send(userID, pushData)
	}
}

// addPostToUserFeed добавляет пост в ленту конкретного пользователя
func (ps *PostService) addPostToUserFeed(ctx context.Context, userID string, post models.FeedPost) {
	if RedisClient == nil {
		return
	}

	feedKey := FEED_KEY_PREFIX + userID

	pipe := RedisClient.Pipeline()
	pipe.ZAdd(ctx, feedKey, &redis.Z{
		Score:  float64(post.CreatedAt.Unix()),
		Member: post.ID,
	})

	postData, err := json.Marshal(post)
	if err != nil {
		log.Println("failed to marshal post for caching:", err)
		return
	}
	pipe.Set(ctx, POST_KEY_PREFIX+post.ID, postData, FEED_CACHE_TTL)

	pipe.ZRemRangeByRank(ctx, feedKey, 0, -MAX_FEED_SIZE-1)
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)

	pipe.Exec(ctx)
}

// removePostFromAllFeeds удаляет пост из лент всех подписчиков (fallback метод)
func (ps *PostService) removePostFromAllFeeds(ctx context.Context, userID string, postID string) {
	if RedisClient == nil {
		return
	}

	var followerIDs []string
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		return
	}

	for _, followerID := range followerIDs {
		ps.removePostFromUserFeed(ctx, followerID, postID)
	}
	ps.removePostFromUserFeed(ctx, userID, postID)
}

// removePostFromUserFeed удаляет пост из ленты конкретного пользователя
func (ps *PostService) removePostFromUserFeed(ctx context.Context, userID string, postID string) {
	if RedisClient == nil {
		return
	}

	pipe := RedisClient.Pipeline()
	pipe.ZRem(ctx, FEED_KEY_PREFIX+userID, postID)
	pipe.Del(ctx, POST_KEY_PREFIX+postID)
	pipe.Exec(ctx)
}

// InvalidateUserFeed инвалидирует кеш ленты пользователя
func (ps *PostService) InvalidateUserFeed(ctx context.Context, userID string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	return RedisClient.Del(ctx, FEED_KEY_PREFIX+userID).Err()
}

// RebuildUserFeedFromDB перестраивает кеш ленты пользователя из БД
func (ps *PostService) RebuildUserFeedFromDB(ctx context.Context, userID string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	feedKey := FEED_KEY_PREFIX + userID
	RedisClient.Del(ctx, feedKey)

	feedPosts, err := ps.buildFeedFromDB(ctx, userID, time.Time{}, MAX_FEED_SIZE)
	if err != nil {
		return err
	}

	ps.cacheFeed(ctx, feedKey, feedPosts)
	return nil
}
