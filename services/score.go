package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodi/db"
	"foodi/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Весовые коэффициенты действий
const (
	WeightPost    = 10
	WeightLike    = 1
	WeightComment = 3
)

var recognizedCounters = map[string]bool{
	models.MetricPostsCount:    true,
	models.MetricLikesGiven:    true,
	models.MetricLikesReceived: true,
	models.MetricCommentsCount: true,
	models.MetricCurrentStreak: true,
	models.MetricLongestStreak: true,
}

var (
	scoreTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_transactions_total",
			Help: "Total number of score transactions",
		},
		[]string{"counter", "status"},
	)

	scoreTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "score_transaction_duration_seconds",
			Help:    "Duration of score transactions in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"counter"},
	)
)

// ScoreService применяет дельты очков и счетчиков к документу пользователя
// атомарно: чтение и запись идут в одной транзакции с блокировкой строки,
// конкурентные вызовы сериализуются БД и не теряют обновления.
type ScoreService struct{}

func NewScoreService() *ScoreService {
	return &ScoreService{}
}

// lockForUpdate добавляет SELECT ... FOR UPDATE на поддерживающих диалектах.
// В sqlite транзакция записи и так эксклюзивна на всю базу.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ApplyDelta применяет дельту очков и одного счетчика к пользователю.
// score и счетчик не опускаются ниже нуля; нулевая дельта не открывает
// транзакцию вовсе. Отсутствующий пользователь получает базовые нулевые
// поля (merge), отсутствие не считается ошибкой.
func (s *ScoreService) ApplyDelta(ctx context.Context, userID string, counter string, points int64, countDelta int64) error {
	if points == 0 && countDelta == 0 {
		return nil
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if !recognizedCounters[counter] {
		return fmt.Errorf("unrecognized counter: %s", counter)
	}

	start := time.Now()
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := lockForUpdate(tx).Where("id = ?", userID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// username уникален, поэтому плейсхолдером служит id;
			// настоящее имя допишет EnsureBaseline при логине
			user = models.User{ID: userID, Username: userID, Metrics: models.BaselineMetrics()}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create baseline user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}

		newScore := user.Score + points
		if newScore < 0 {
			newScore = 0
		}

		metrics := user.Metrics
		if metrics == nil {
			metrics = models.BaselineMetrics()
		}
		newCount := models.MetricValue(metrics, counter) + countDelta
		if newCount < 0 {
			newCount = 0
		}
		metrics[counter] = newCount

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"score": newScore, "metrics": metrics}).Error
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	scoreTransactionsTotal.WithLabelValues(counter, status).Inc()
	scoreTransactionDuration.WithLabelValues(counter).Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("score transaction failed: %w", err)
	}
	return nil
}

// BumpOnPostCreated начисляет очки за новый пост
func (s *ScoreService) BumpOnPostCreated(ctx context.Context, userID string) error {
	return s.ApplyDelta(ctx, userID, models.MetricPostsCount, WeightPost, 1)
}

// BumpOnPostDeleted откатывает начисление за удаленный пост
func (s *ScoreService) BumpOnPostDeleted(ctx context.Context, userID string) error {
	return s.ApplyDelta(ctx, userID, models.MetricPostsCount, -WeightPost, -1)
}

// BumpOnLikeDelta начисляет/снимает очки за лайк (delta = +1/-1)
func (s *ScoreService) BumpOnLikeDelta(ctx context.Context, userID string, delta int64) error {
	if delta == 0 {
		return nil
	}
	return s.ApplyDelta(ctx, userID, models.MetricLikesGiven, WeightLike*delta, delta)
}

// BumpOnCommentAdded начисляет очки за комментарий
func (s *ScoreService) BumpOnCommentAdded(ctx context.Context, userID string) error {
	return s.ApplyDelta(ctx, userID, models.MetricCommentsCount, WeightComment, 1)
}

// EnsureBaseline дописывает недостающие поля лидерборда, не трогая
// существующие значения (бэкофилл для старых аккаунтов)
func (s *ScoreService) EnsureBaseline(ctx context.Context, userID string, username string) error {
	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := lockForUpdate(tx).Where("id = ?", userID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{ID: userID, Username: username, Metrics: models.BaselineMetrics()}
			return tx.Create(&user).Error
		} else if err != nil {
			return err
		}

		metrics := user.Metrics
		if metrics == nil {
			metrics = models.BaselineMetrics()
		} else {
			for name, zero := range models.BaselineMetrics() {
				if _, ok := metrics[name]; !ok {
					metrics[name] = zero
				}
			}
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("metrics", metrics).Error
	})
}

// UpdateStreakOnPost обновляет серию ежедневных постов: продлеваем при посте
// на следующий день, сбрасываем в 1 после пропуска, повторный пост в тот же
// день серию не меняет
func (s *ScoreService) UpdateStreakOnPost(ctx context.Context, userID string, now time.Time) error {
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := lockForUpdate(tx).Where("id = ?", userID).First(&user).Error; err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}

		metrics := user.Metrics
		if metrics == nil {
			metrics = models.BaselineMetrics()
		}

		lastPostDate := models.MetricString(metrics, models.MetricLastPostDate)
		if lastPostDate == today {
			return nil
		}

		current := models.MetricValue(metrics, models.MetricCurrentStreak)
		if lastPostDate == yesterday {
			current++
		} else {
			current = 1
		}

		longest := models.MetricValue(metrics, models.MetricLongestStreak)
		if current > longest {
			longest = current
		}

		metrics[models.MetricCurrentStreak] = current
		metrics[models.MetricLongestStreak] = longest
		metrics[models.MetricLastPostDate] = today

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("metrics", metrics).Error
	})
}
