package services

import (
	"testing"

	"foodi/db"
	"foodi/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB пересоздает базу SQLite в памяти перед каждым тестом
func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// У in-memory sqlite база живет в соединении, держим ровно одно
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(
		&models.User{}, &models.UserTokens{},
		&models.Post{}, &models.Like{}, &models.Comment{}, &models.SavedPost{},
		&models.Follow{}, &models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.ORM = database
}

func createTestUser(t *testing.T, id, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:                   id,
		Username:             username,
		NotificationsEnabled: true,
		Metrics:              models.BaselineMetrics(),
	}
	if err := db.ORM.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func saveUser(user *models.User) error {
	return db.ORM.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"score": user.Score, "metrics": user.Metrics}).Error
}

func dbCount(model interface{}, count *int64) error {
	return db.ORM.Model(model).Count(count).Error
}

func loadUser(t *testing.T, id string) *models.User {
	t.Helper()

	var user models.User
	if err := db.ORM.Where("id = ?", id).First(&user).Error; err != nil {
		t.Fatalf("failed to load user %s: %v", id, err)
	}
	return &user
}
