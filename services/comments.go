package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodi/db"
	"foodi/models"

	"github.com/google/uuid"
)

type CommentService struct {
	scores        *ScoreService
	notifications *NotificationService
}

func NewCommentService() *CommentService {
	return &CommentService{
		scores:        NewScoreService(),
		notifications: NewNotificationService(),
	}
}

// AddComment добавляет комментарий к посту, начисляет очки автору
// комментария и уведомляет автора поста
func (cs *CommentService) AddComment(ctx context.Context, userID string, postID string, text string) (*models.Comment, error) {
	if userID == "" {
		return nil, fmt.Errorf("user not authenticated")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is empty")
	}

	var post models.Post
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}

	var author models.User
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", userID).First(&author).Error; err != nil {
		return nil, fmt.Errorf("author not found: %w", err)
	}

	comment := &models.Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		AuthorID:   userID,
		AuthorName: author.Username,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	if err := db.GetWriteDB(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if err := cs.scores.BumpOnCommentAdded(ctx, userID); err != nil {
		return comment, err
	}

	if post.AuthorID != userID {
		cs.notifications.NotifyComment(ctx, post.AuthorID, userID, postID, text)
	}

	return comment, nil
}

// ListComments возвращает комментарии поста по возрастанию времени
func (cs *CommentService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.GetReadOnlyDB(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
