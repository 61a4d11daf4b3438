package service

import (
	"fmt"
	"testing"

	"github.com/cardforge/api/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Generation{},
		&model.Flashcard{},
		&model.GenerationErrorLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Provider: model.ProviderLocal}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestGeneration(t *testing.T, db *gorm.DB, userID int64) *model.Generation {
	t.Helper()
	generation := &model.Generation{
		UserID:           userID,
		Model:            "test/model",
		SourceTextHash:   fmt.Sprintf("hash-%d", userID),
		SourceTextLength: 1500,
		GeneratedCount:   3,
	}
	if err := db.Create(generation).Error; err != nil {
		t.Fatalf("Failed to create test generation: %v", err)
	}
	return generation
}
