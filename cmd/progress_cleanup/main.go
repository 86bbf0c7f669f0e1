package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"funnelwerk/internal/database"
	"funnelwerk/internal/domain/session"
)

// progress_cleanup purges recovery rows of funnels that were abandoned and
// never submitted. Run from cron; PROGRESS_MAX_AGE defaults to 30 days.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	maxAge := 30 * 24 * time.Hour
	if v := os.Getenv("PROGRESS_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid PROGRESS_MAX_AGE %q: %v", v, err)
		}
		maxAge = d
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	repo := session.NewProgressRepository(db)
	removed, err := repo.DeleteStale(context.Background(), time.Now().Add(-maxAge))
	if err != nil {
		log.Fatalf("cleanup funnel_progress failed: %v", err)
	}

	log.Printf("progress cleanup completed: removed=%d max_age=%s", removed, maxAge)
}
