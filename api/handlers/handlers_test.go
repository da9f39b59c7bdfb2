package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodi/api/middleware"
	"foodi/db"
	"foodi/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() error {
	// Инициализируем тестовую базу данных SQLite в памяти
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return err
	}

	// У in-memory sqlite база живет в соединении, держим ровно одно
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(
		&models.User{}, &models.UserTokens{},
		&models.Post{}, &models.Like{}, &models.Comment{}, &models.SavedPost{},
		&models.Follow{}, &models.Notification{},
	)
	if err != nil {
		return err
	}

	db.ORM = database
	return nil
}

func setupRouter() *gin.Engine {
	if err := setupTestDB(); err != nil {
		panic(err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/v1/auth/register", Register)
	r.POST("/api/v1/auth/login", Login)
	r.GET("/api/v1/user/get/:id", UserGet)
	r.GET("/api/v1/user/search", UserSearch)
	r.GET("/api/v1/posts", ListPosts)
	r.GET("/api/v1/posts/:post_id", GetPost)
	r.GET("/api/v1/posts/:post_id/comments", ListComments)
	r.GET("/api/v1/leaderboard", GetLeaderboard)
	r.GET("/api/v1/foodtypes", GetFoodTypes)

	authorized := r.Group("/api/v1/")
	authorized.Use(middleware.TestAuthMiddleware())
	authorized.POST("posts", CreatePost)
	authorized.DELETE("posts/:post_id", DeletePost)
	authorized.POST("posts/:post_id/like", ToggleLike)
	authorized.POST("posts/:post_id/comments", AddComment)
	authorized.POST("posts/:post_id/save", ToggleSaved)
	authorized.GET("posts/:post_id/saved", GetSavedStatus)
	authorized.GET("profile/saved", ListSavedPosts)
	authorized.GET("feed", GetFeed)
	authorized.GET("profile", GetProfile)
	authorized.PUT("profile/settings", UpdateSettings)
	authorized.POST("users/:user_id/follow", Follow)
	authorized.DELETE("users/:user_id/follow", Unfollow)
	authorized.GET("notifications", ListNotifications)
	authorized.POST("notifications/read", MarkNotificationsRead)
	authorized.GET("notifications/unread", GetUnreadCount)

	return r
}

func seedUser(id, username string) {
	db.ORM.Create(&models.User{
		ID:                   id,
		Username:             username,
		NotificationsEnabled: true,
		Metrics:              models.BaselineMetrics(),
	})
}

func doJSON(r *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r := setupRouter()

	w := doJSON(r, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse login response: %v", err)
	}
	if resp["token"] == "" || resp["token"] == nil {
		t.Errorf("expected token in login response")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := setupRouter()

	body := map[string]string{"username": "alice", "password": "secret123"}
	doJSON(r, "POST", "/api/v1/auth/register", "", body)
	w := doJSON(r, "POST", "/api/v1/auth/register", "", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate username, got %d", w.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := setupRouter()

	doJSON(r, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123",
	})

	w := doJSON(r, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r := setupRouter()

	w := doJSON(r, "POST", "/api/v1/posts", "", map[string]string{
		"title": "t", "content": "c",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without auth, got %d", w.Code)
	}
}

func TestCreatePostAndScore(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")

	w := doJSON(r, "POST", "/api/v1/posts", "u1", map[string]interface{}{
		"title":      "Tonkotsu heaven",
		"content":    "18 hour broth",
		"restaurant": "Ramen Ya",
		"food_type":  "Ramen",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.ORM.Where("id = ?", "u1").First(&user).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if user.Score != 10 {
		t.Errorf("expected score 10 after post, got %d", user.Score)
	}
}

func TestCreatePostInvalidFoodType(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")

	w := doJSON(r, "POST", "/api/v1/posts", "u1", map[string]interface{}{
		"title": "t", "content": "c", "food_type": "Cardboard",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid food type, got %d", w.Code)
	}
}

func TestLikeAndCommentFlow(t *testing.T) {
	r := setupRouter()
	seedUser("author", "alice")
	seedUser("fan", "bob")

	w := doJSON(r, "POST", "/api/v1/posts", "author", map[string]string{
		"title": "t", "content": "c",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var post models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to parse post: %v", err)
	}

	w = doJSON(r, "POST", "/api/v1/posts/"+post.ID+"/like", "fan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for like, got %d: %s", w.Code, w.Body.String())
	}
	var likeResp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &likeResp)
	if likeResp["liked"] != true {
		t.Errorf("expected liked=true")
	}

	w = doJSON(r, "POST", "/api/v1/posts/"+post.ID+"/comments", "fan", map[string]string{
		"text": "looks great",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for comment, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "GET", "/api/v1/posts/"+post.ID+"/comments", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Автор получил два уведомления
	w = doJSON(r, "GET", "/api/v1/notifications/unread", "author", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var unreadResp map[string]int64
	_ = json.Unmarshal(w.Body.Bytes(), &unreadResp)
	if unreadResp["unread"] != 2 {
		t.Errorf("expected 2 unread notifications, got %d", unreadResp["unread"])
	}

	w = doJSON(r, "POST", "/api/v1/notifications/read", "author", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = doJSON(r, "GET", "/api/v1/notifications/unread", "author", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &unreadResp)
	if unreadResp["unread"] != 0 {
		t.Errorf("expected 0 unread after mark read, got %d", unreadResp["unread"])
	}
}

func TestSavedPostsFlow(t *testing.T) {
	r := setupRouter()
	seedUser("author", "alice")
	seedUser("reader", "bob")

	w := doJSON(r, "POST", "/api/v1/posts", "author", map[string]string{
		"title": "t", "content": "c",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var post models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to parse post: %v", err)
	}

	w = doJSON(r, "POST", "/api/v1/posts/"+post.ID+"/save", "reader", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for save, got %d: %s", w.Code, w.Body.String())
	}
	var saveResp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &saveResp)
	if saveResp["saved"] != true {
		t.Errorf("expected saved=true")
	}

	w = doJSON(r, "GET", "/api/v1/profile/saved", "reader", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listResp struct {
		Posts []models.Post `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to parse saved posts: %v", err)
	}
	if len(listResp.Posts) != 1 || listResp.Posts[0].ID != post.ID {
		t.Errorf("expected saved post %s in list, got %+v", post.ID, listResp.Posts)
	}

	// Повторное сохранение снимает закладку
	w = doJSON(r, "POST", "/api/v1/posts/"+post.ID+"/save", "reader", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &saveResp)
	if saveResp["saved"] != false {
		t.Errorf("expected saved=false after toggle off")
	}

	w = doJSON(r, "GET", "/api/v1/posts/"+post.ID+"/saved", "reader", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &saveResp)
	if saveResp["saved"] != false {
		t.Errorf("expected saved=false status")
	}
}

func TestFollowEndpoints(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")
	seedUser("u2", "bob")

	w := doJSON(r, "POST", "/api/v1/users/u2/follow", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Самоподписка запрещена
	w = doJSON(r, "POST", "/api/v1/users/u1/follow", "u1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for self-follow, got %d", w.Code)
	}

	w = doJSON(r, "DELETE", "/api/v1/users/u2/follow", "u1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for unfollow, got %d", w.Code)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")
	seedUser("u2", "bob")
	db.ORM.Model(&models.User{}).Where("id = ?", "u1").Update("score", 30)
	db.ORM.Model(&models.User{}).Where("id = ?", "u2").Update("score", 50)

	w := doJSON(r, "GET", "/api/v1/leaderboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Users []struct {
			ID    string `json:"id"`
			Score int64  `json:"score"`
		} `json:"users"`
		Restaurants []interface{} `json:"restaurants"`
		FoodTypes   []interface{} `json:"food_types"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse leaderboard: %v", err)
	}
	if len(resp.Users) != 2 || resp.Users[0].ID != "u2" {
		t.Errorf("expected u2 on top, got %+v", resp.Users)
	}
	if resp.Restaurants == nil || resp.FoodTypes == nil {
		t.Errorf("expected non-nil aggregation panels")
	}
}

func TestFoodTypesEndpoint(t *testing.T) {
	r := setupRouter()

	w := doJSON(r, "GET", "/api/v1/foodtypes", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		FoodTypes []string `json:"food_types"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse food types: %v", err)
	}
	if len(resp.FoodTypes) != len(models.FoodTypes) {
		t.Errorf("expected %d food types, got %d", len(models.FoodTypes), len(resp.FoodTypes))
	}
}

func TestGetProfileAndSettings(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")

	w := doJSON(r, "GET", "/api/v1/profile", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(r, "PUT", "/api/v1/profile/settings", "u1", map[string]interface{}{
		"bio": "ramen enthusiast",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	db.ORM.Where("id = ?", "u1").First(&user)
	if user.Bio != "ramen enthusiast" {
		t.Errorf("expected updated bio, got %q", user.Bio)
	}
}

func TestGetFeedEmpty(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")

	w := doJSON(r, "GET", "/api/v1/feed", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp models.FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse feed: %v", err)
	}
	if resp.HasMore {
		t.Errorf("expected has_more=false for empty feed")
	}
}

func TestUserGetAndSearch(t *testing.T) {
	r := setupRouter()
	seedUser("u1", "alice")

	w := doJSON(r, "GET", "/api/v1/user/get/u1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(r, "GET", "/api/v1/user/get/ghost", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing user, got %d", w.Code)
	}

	w = doJSON(r, "GET", "/api/v1/user/search?q=ali", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(r, "GET", "/api/v1/user/search", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without query, got %d", w.Code)
	}
}
