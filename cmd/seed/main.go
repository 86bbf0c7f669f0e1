package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"funnelwerk/internal/config"
	"funnelwerk/internal/database"
	"funnelwerk/internal/domain/auth"
	"funnelwerk/internal/domain/funnel"
	"funnelwerk/internal/domain/lead"
	"funnelwerk/internal/domain/session"
	jwtsvc "funnelwerk/internal/pkg/jwt"
)

// seed prepares a database for a fresh deployment: schema migration plus
// the initial dashboard admin account. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}

	log.Println("Running AutoMigrate...")
	if err := session.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate funnel_progress failed: ", err)
	}
	if err := lead.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate lead_submissions failed: ", err)
	}
	adminRepo := auth.NewAdminRepository(db)
	if err := adminRepo.AutoMigrate(); err != nil {
		log.Fatal("AutoMigrate admin_users failed: ", err)
	}

	// Definitions are code, not data, but validating them here catches an
	// authoring mistake before the API even starts.
	if _, err := funnel.NewRegistry(funnel.Defaults()...); err != nil {
		log.Fatal("invalid funnel definition: ", err)
	}

	authService := auth.NewService(adminRepo, jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL))
	user, err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, "Admin")
	if err != nil {
		log.Fatal("admin seed failed: ", err)
	}
	log.Printf("Admin ready: id=%d email=%s", user.ID, user.Email)

	log.Println("Seed completed")
	os.Exit(0)
}
