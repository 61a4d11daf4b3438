// Command prune runs one maintenance pass (stale refresh tokens, aged
// generation error logs) and exits. Intended for cron-style scheduling when
// the in-process scheduler is disabled.
package main

import (
	"context"
	"log"

	"github.com/cardforge/api/internal/config"
	"github.com/cardforge/api/internal/database"
	"github.com/cardforge/api/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := scheduler.NewMaintenanceScheduler(db, scheduler.Config{
		Interval:          cfg.SchedulerInterval,
		ErrorLogRetention: cfg.ErrorLogRetention,
	})
	s.RunOnce(context.Background())

	log.Println("Maintenance pass complete")
}
