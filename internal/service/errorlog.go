package service

import (
	"context"
	"log"

	"github.com/cardforge/api/internal/model"
	"gorm.io/gorm"
)

type ErrorLogService struct {
	db *gorm.DB
}

func NewErrorLogService(db *gorm.DB) *ErrorLogService {
	return &ErrorLogService{db: db}
}

// Log writes a generation error record best-effort. Failures are only
// reported to the local log: telemetry must never mask or interrupt the
// primary error being reported, so this method returns nothing and callers
// usually invoke it in its own goroutine.
func (s *ErrorLogService) Log(ctx context.Context, entry model.GenerationErrorLog) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ErrorLog] panic while writing generation error log: %v", r)
		}
	}()

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("[ErrorLog] failed to write generation error log (code=%s user=%d): %v",
			entry.ErrorCode, entry.UserID, err)
	}
}
