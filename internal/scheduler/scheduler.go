package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cardforge/api/internal/model"
	"gorm.io/gorm"
)

// MaintenanceScheduler periodically prunes rows nothing will read again:
// expired or revoked refresh tokens and generation error logs past their
// retention window.
type MaintenanceScheduler struct {
	db        *gorm.DB
	interval  time.Duration
	retention time.Duration

	mu       sync.Mutex
	running  bool
	lastRun  time.Time
	stopChan chan struct{}
}

type Config struct {
	Interval          time.Duration
	ErrorLogRetention time.Duration
}

func NewMaintenanceScheduler(db *gorm.DB, cfg Config) *MaintenanceScheduler {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.ErrorLogRetention == 0 {
		cfg.ErrorLogRetention = 30 * 24 * time.Hour
	}

	return &MaintenanceScheduler{
		db:        db,
		interval:  cfg.Interval,
		retention: cfg.ErrorLogRetention,
		stopChan:  make(chan struct{}),
	}
}

func (s *MaintenanceScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Scheduler] Starting with interval %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Scheduler] Context cancelled, stopping")
			return
		case <-s.stopChan:
			log.Println("[Scheduler] Stop signal received")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		close(s.stopChan)
		s.running = false
		log.Println("[Scheduler] Stopped")
	}
}

// RunOnce executes a single maintenance pass.
func (s *MaintenanceScheduler) RunOnce(ctx context.Context) {
	now := time.Now()

	tokens := s.db.WithContext(ctx).
		Where("expires_at < ? OR revoked = ?", now, true).
		Delete(&model.RefreshToken{})
	if tokens.Error != nil {
		log.Printf("[Scheduler] Failed to prune refresh tokens: %v", tokens.Error)
	} else if tokens.RowsAffected > 0 {
		log.Printf("[Scheduler] Pruned %d stale refresh tokens", tokens.RowsAffected)
	}

	logs := s.db.WithContext(ctx).
		Where("created_at < ?", now.Add(-s.retention)).
		Delete(&model.GenerationErrorLog{})
	if logs.Error != nil {
		log.Printf("[Scheduler] Failed to prune generation error logs: %v", logs.Error)
	} else if logs.RowsAffected > 0 {
		log.Printf("[Scheduler] Pruned %d aged generation error logs", logs.RowsAffected)
	}

	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()
}

func (s *MaintenanceScheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"enabled":  s.running,
		"interval": s.interval.String(),
	}
	if !s.lastRun.IsZero() {
		status["lastRun"] = s.lastRun
	}
	return status
}
