package database

import (
	"github.com/cardforge/api/internal/config"
	"github.com/cardforge/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Generation{},
		&model.Flashcard{},
		&model.GenerationErrorLog{},
	)
	if err != nil {
		return err
	}

	// Duplicate-source lookups are always scoped to one user.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_generations_user_hash ON generations(user_id, source_text_hash)")

	return nil
}
