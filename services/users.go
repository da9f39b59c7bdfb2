package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodi/db"
	"foodi/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

type UserService struct {
	scores *ScoreService
}

func NewUserService() *UserService {
	return &UserService{scores: NewScoreService()}
}

// SettingsInput - частичное обновление профиля, nil поля не трогаем
type SettingsInput struct {
	FullName             *string `json:"full_name"`
	Bio                  *string `json:"bio"`
	ProfilePicURL        *string `json:"profile_pic_url"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(stored, password string) error {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return errors.New("invalid password format")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	if hex.EncodeToString(hash) != parts[1] {
		return errors.New("invalid password")
	}
	return nil
}

// Register создает пользователя с нулевым счетом и базовыми счетчиками
func (us *UserService) Register(ctx context.Context, username, fullName, bio, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	var alreadyExists int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&alreadyExists).Error
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if alreadyExists > 0 {
		return nil, errors.New("user already exists")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:                   uuid.NewString(),
		Username:             username,
		FullName:             fullName,
		Bio:                  bio,
		NotificationsEnabled: true,
		Password:             passwordHash,
		Metrics:              models.BaselineMetrics(),
		CreatedAt:            time.Now(),
	}

	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login проверяет пароль, выдает токен и бэкофиллит поля лидерборда
// для старых аккаунтов
func (us *UserService) Login(ctx context.Context, username, password string) (token string, userID string, err error) {
	var user models.User
	err = db.GetReadOnlyDB(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return "", "", errors.New("user not found")
	}

	if err := verifyPassword(user.Password, password); err != nil {
		return "", "", err
	}

	// Удаляем старые токены (если они есть)
	_ = db.GetWriteDB(ctx).Where("user_id = ?", user.ID).Delete(&models.UserTokens{}).Error

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserTokens{
		UserID: user.ID,
		Token:  token,
	}).Error
	if err != nil {
		return "", "", fmt.Errorf("failed to create token: %w", err)
	}

	if err := us.scores.EnsureBaseline(ctx, user.ID, user.Username); err != nil {
		return "", "", err
	}

	return token, user.ID, nil
}

// Logout удаляет токен пользователя
func (us *UserService) Logout(ctx context.Context, userID, token string) error {
	return db.GetWriteDB(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.UserTokens{}).Error
}

// CheckToken возвращает id пользователя по токену
func (us *UserService) CheckToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	var userToken models.UserTokens
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.New("invalid token")
	}
	if err != nil {
		return "", err
	}
	return userToken.UserID, nil
}

// GetByID возвращает профиль пользователя
func (us *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := db.GetReadOnlyDB(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &user, nil
}

// Search ищет пользователей по префиксу имени
func (us *UserService) Search(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []models.User{}, nil
	}

	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("username LIKE ?", prefix+"%").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// UpdateSettings обновляет настройки профиля
func (us *UserService) UpdateSettings(ctx context.Context, userID string, in SettingsInput) error {
	updates := make(map[string]interface{})
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.ProfilePicURL != nil {
		updates["profile_pic_url"] = *in.ProfilePicURL
	}
	if in.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *in.NotificationsEnabled
	}
	if len(updates) == 0 {
		return nil
	}

	result := db.GetWriteDB(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}
