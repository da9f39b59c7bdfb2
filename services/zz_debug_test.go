package services

import (
	"context"
	"testing"

	"foodi/db"
	"foodi/models"
)

func TestZZDebugMetrics(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	scores := NewScoreService()
	createTestUser(t, "u1", "alice")

	if err := scores.BumpOnPostCreated(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	var raw string
	if err := db.ORM.Raw("SELECT metrics FROM users WHERE id = ?", "u1").Scan(&raw).Error; err != nil {
		t.Fatal(err)
	}
	t.Logf("raw metrics column: %q", raw)

	user := loadUser(t, "u1")
	t.Logf("loaded metrics: %#v", user.Metrics)
	t.Logf("MetricValue postsCount: %d", models.MetricValue(user.Metrics, models.MetricPostsCount))
}
