package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"foodi/db"
	"foodi/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UNREAD_KEY_PREFIX     = "unread_notifications:" // Префикс ключей счетчика непрочитанных
	UNREAD_COUNTER_TTL    = 24 * time.Hour
	COMMENT_SNIPPET_LIMIT = 100
)

// Lua скрипт для атомарного инкремента счетчика непрочитанных с полом в ноль
var unreadIncrScript = `
	local key = KEYS[1]
	local delta = tonumber(ARGV[1])
	local current = tonumber(redis.call('GET', key) or '0')
	local new_count = math.max(0, current + delta)
	redis.call('SET', key, new_count)
	redis.call('EXPIRE', key, 86400)
	return new_count
`

var unreadIncrSHA string

// loadUnreadCounterScript загружает Lua скрипт в Redis
func loadUnreadCounterScript() {
	if RedisClient == nil {
		return
	}
	sha, err := RedisClient.ScriptLoad(context.Background(), unreadIncrScript).Result()
	if err != nil {
		log.Printf("Warning: Failed to load unread counter script: %v", err)
		return
	}
	unreadIncrSHA = sha
}

type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// snippet обрезает текст комментария для уведомления.
// Режем по рунам, чтобы не развалить многобайтовый символ.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) > COMMENT_SNIPPET_LIMIT {
		return string(runes[:COMMENT_SNIPPET_LIMIT]) + "..."
	}
	return text
}

// Create сохраняет уведомление, уважая настройку получателя, и двигает
// счетчик непрочитанных. tx может быть nil - тогда пишем вне транзакции.
func (ns *NotificationService) Create(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	conn := tx
	if conn == nil {
		conn = db.GetWriteDB(ctx)
	}

	var recipient models.User
	if err := conn.Where("id = ?", n.UserID).First(&recipient).Error; err != nil {
		return fmt.Errorf("recipient not found: %w", err)
	}
	if !recipient.NotificationsEnabled {
		return nil
	}

	if n.FromUsername == "" {
		var actor models.User
		if err := conn.Where("id = ?", n.FromUserID).First(&actor).Error; err == nil {
			n.FromUsername = actor.Username
		} else {
			n.FromUsername = "Someone"
		}
	}

	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()

	if err := conn.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	ns.bumpUnread(ctx, n.UserID, 1)
	_ = SendWsNotify(n.UserID, string(n.Type), ns.message(n))
	return nil
}

func (ns *NotificationService) message(n *models.Notification) string {
	switch n.Type {
	case models.NotificationLike:
		return fmt.Sprintf("@%s liked your post", n.FromUsername)
	case models.NotificationComment:
		return fmt.Sprintf("@%s commented: %s", n.FromUsername, n.CommentText)
	case models.NotificationFollow:
		return fmt.Sprintf("@%s started following you", n.FromUsername)
	default:
		return ""
	}
}

// NotifyLike уведомляет автора поста о лайке; ошибка не прерывает действие
func (ns *NotificationService) NotifyLike(ctx context.Context, recipientID, actorID, postID string) {
	err := ns.Create(ctx, nil, &models.Notification{
		UserID:     recipientID,
		Type:       models.NotificationLike,
		FromUserID: actorID,
		PostID:     postID,
	})
	if err != nil {
		log.Printf("Failed to create like notification: %v", err)
	}
}

// NotifyComment уведомляет автора поста о комментарии
func (ns *NotificationService) NotifyComment(ctx context.Context, recipientID, actorID, postID, text string) {
	err := ns.Create(ctx, nil, &models.Notification{
		UserID:      recipientID,
		Type:        models.NotificationComment,
		FromUserID:  actorID,
		PostID:      postID,
		CommentText: snippet(text),
	})
	if err != nil {
		log.Printf("Failed to create comment notification: %v", err)
	}
}

// NotifyFollowInTx создает уведомление о подписке в той же транзакции,
// что и ребро подписки
func (ns *NotificationService) NotifyFollowInTx(ctx context.Context, tx *gorm.DB, recipientID, actorID string) error {
	return ns.Create(ctx, tx, &models.Notification{
		UserID:     recipientID,
		Type:       models.NotificationFollow,
		FromUserID: actorID,
	})
}

// List возвращает уведомления пользователя по убыванию времени
func (ns *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.GetReadOnlyDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkAllRead помечает все уведомления прочитанными и сбрасывает счетчик
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	err := db.GetWriteDB(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	if RedisClient != nil {
		RedisClient.Set(ctx, UNREAD_KEY_PREFIX+userID, 0, UNREAD_COUNTER_TTL)
	}
	return nil
}

// UnreadCount возвращает количество непрочитанных уведомлений.
// Быстрый путь - Redis, при промахе пересчитываем из БД.
func (ns *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if RedisClient != nil {
		val, err := RedisClient.Get(ctx, UNREAD_KEY_PREFIX+userID).Result()
		if err == nil {
			if count, err := strconv.ParseInt(val, 10, 64); err == nil {
				return count, nil
			}
		}
	}
	return ns.ReconcileUnread(ctx, userID)
}

// ReconcileUnread пересчитывает счетчик из БД и чинит расхождение в кеше
func (ns *NotificationService) ReconcileUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if RedisClient != nil {
		RedisClient.Set(ctx, UNREAD_KEY_PREFIX+userID, count, UNREAD_COUNTER_TTL)
	}
	return count, nil
}

// bumpUnread атомарно двигает счетчик непрочитанных (не ниже нуля)
func (ns *NotificationService) bumpUnread(ctx context.Context, userID string, delta int64) {
	if RedisClient == nil {
		return
	}

	key := UNREAD_KEY_PREFIX + userID
	if unreadIncrSHA != "" {
		if _, err := RedisClient.EvalSha(ctx, unreadIncrSHA, []string{key}, delta).Result(); err == nil {
			return
		}
	}

	// Fallback на обычный инкремент
	if err := RedisClient.IncrBy(ctx, key, delta).Err(); err != nil {
		log.Printf("Failed to bump unread counter for user %s: %v", userID, err)
	}
}
