package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"funnelwerk/internal/config"
	"funnelwerk/internal/database"
	"funnelwerk/internal/domain/auth"
	"funnelwerk/internal/domain/funnel"
	"funnelwerk/internal/domain/lead"
	"funnelwerk/internal/domain/notify"
	"funnelwerk/internal/domain/session"
	"funnelwerk/internal/middleware"
	jwtsvc "funnelwerk/internal/pkg/jwt"
)

func main() {
	// .env is for local development; deployments configure via real ENV.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := session.AutoMigrate(db); err != nil {
		log.Fatal("migrate funnel_progress failed: ", err)
	}
	if err := lead.AutoMigrate(db); err != nil {
		log.Fatal("migrate lead_submissions failed: ", err)
	}

	adminRepo := auth.NewAdminRepository(db)
	if err := adminRepo.AutoMigrate(); err != nil {
		log.Fatal("migrate admin_users failed: ", err)
	}

	registry, err := funnel.NewRegistry(funnel.Defaults()...)
	if err != nil {
		log.Fatal("invalid funnel definition: ", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notify.NewHub()
	defer hub.Close()

	dispatcher := lead.NewWebhookDispatcher(cfg.CRMWebhookURL, cfg.CRMTimeout, cfg.CRMRetryMax)
	leadService := lead.NewService(lead.NewSubmissionRepository(db), dispatcher, hub)
	leadHandler := lead.NewHandler(leadService)

	progress := session.NewDebouncedProgress(session.NewProgressRepository(db), cfg.ProgressDebounce)
	sessionService := session.NewService(registry, progress, leadService)
	sessionHandler := session.NewHandler(sessionService)

	funnelHandler := funnel.NewHandler(registry)

	authService := auth.NewService(adminRepo, j)
	authHandler := auth.NewHandler(authService)

	wsHandler := notify.NewWSHandler(hub, j)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public funnel surface
		funnelHandler.RegisterRoutes(v1)
		sessionHandler.RegisterRoutes(v1)

		// admin dashboard
		admin := v1.Group("/admin")
		authHandler.RegisterRoutes(admin)

		protected := admin.Group("/")
		protected.Use(middleware.RequireAdmin(j))
		{
			leadHandler.RegisterAdminRoutes(protected)
		}

		// CRM sync job
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth())
		{
			leadHandler.RegisterInternalRoutes(internal)
		}
	}

	r.GET("/ws/leads", wsHandler.HandleWebSocket)

	log.Printf("funnelwerk api listening addr=%s env=%s", cfg.HTTPAddr, cfg.AppEnv)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
