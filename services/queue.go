package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"foodi/models"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FEED_UPDATE_QUEUE  = "feed_update_queue"
	QUEUE_WORKER_COUNT = 5
)

var feedTasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feed_fanout_tasks_total",
		Help: "Total number of feed fan-out tasks processed",
	},
	[]string{"action"},
)

// FeedUpdateTask представляет задачи для обновления лент
type FeedUpdateTask struct {
	UserID string      `json:"user_id"`
	Post   models.Post `json:"post"`
	Action string      `json:"action"` // "create", "delete"
}

type QueueService struct {
	postService *PostService
}

func NewQueueService() *QueueService {
	return &QueueService{
		postService: NewPostService(),
	}
}

// StartWorkers запускает воркеры для обработки очереди
func (qs *QueueService) StartWorkers(ctx context.Context) {
	for i := 0; i < QUEUE_WORKER_COUNT; i++ {
		go qs.worker(ctx, i)
	}
}

// worker обрабатывает задачи из очереди
func (qs *QueueService) worker(ctx context.Context, workerID int) {
	log.Printf("Feed update worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Feed update worker %d stopping", workerID)
			return
		default:
			// Получаем задачу из очереди (блокирующий вызов с таймаутом)
			result, err := RedisClient.BLPop(ctx, 5*time.Second, FEED_UPDATE_QUEUE).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				log.Printf("Worker %d error getting task: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			var task FeedUpdateTask
			if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
				log.Printf("Worker %d error unmarshaling task: %v", workerID, err)
				continue
			}

			qs.processTask(ctx, &task, workerID)
		}
	}
}

// processTask обрабатывает конкретную задачу
func (qs *QueueService) processTask(ctx context.Context, task *FeedUpdateTask, workerID int) {
	switch task.Action {
	case "create":
		qs.postService.updateFollowersFeeds(ctx, task.UserID, &task.Post)
	case "delete":
		qs.postService.removePostFromAllFeeds(ctx, task.UserID, task.Post.ID)
	default:
		log.Printf("Worker %d unknown action: %s", workerID, task.Action)
		return
	}
	feedTasksTotal.WithLabelValues(task.Action).Inc()
}

// EnqueueFeedUpdate добавляет задачу обновления ленты в очередь
func (qs *QueueService) EnqueueFeedUpdate(ctx context.Context, userID string, post models.Post, action string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	task := FeedUpdateTask{
		UserID: userID,
		Post:   post,
		Action: action,
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := RedisClient.RPush(ctx, FEED_UPDATE_QUEUE, taskData).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// GetQueueStats возвращает длину очереди
func (qs *QueueService) GetQueueStats(ctx context.Context) (int64, error) {
	if RedisClient == nil {
		return 0, fmt.Errorf("redis not available")
	}
	return RedisClient.LLen(ctx, FEED_UPDATE_QUEUE).Result()
}
