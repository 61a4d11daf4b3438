package main

import (
	"context"
	"log"
	"os"

	"github.com/cardforge/api/internal/cache"
	"github.com/cardforge/api/internal/client"
	"github.com/cardforge/api/internal/config"
	"github.com/cardforge/api/internal/database"
	"github.com/cardforge/api/internal/handler"
	"github.com/cardforge/api/internal/middleware"
	"github.com/cardforge/api/internal/ratelimit"
	"github.com/cardforge/api/internal/scheduler"
	"github.com/cardforge/api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache and rate limiter (fail-open)
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisCache = nil
	}

	var limiter *ratelimit.Limiter
	limiter, err = ratelimit.NewLimiter(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize rate limiter: %v", err)
		limiter = nil
	}

	// LLM client
	llmClient := client.NewOpenRouterClient(cfg.OpenRouterURL, cfg.OpenRouterAPIKey, cfg.DefaultModel)

	// Google OAuth
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	// Services
	flashcardService := service.NewFlashcardService(db)
	generationService := service.NewGenerationService(db)
	errorLogService := service.NewErrorLogService(db)
	userService := service.NewUserService(db)

	// Handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL)
	flashcardHandler := handler.NewFlashcardHandler(flashcardService, redisCache)
	generationHandler := handler.NewGenerationHandler(generationService, errorLogService, llmClient, cfg.DefaultModel)
	userHandler := handler.NewUserHandler(userService)

	// Background maintenance scheduler
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.SchedulerEnabled {
		maintenance = scheduler.NewMaintenanceScheduler(db, scheduler.Config{
			Interval:          cfg.SchedulerInterval,
			ErrorLogRetention: cfg.ErrorLogRetention,
		})
		go maintenance.Start(context.Background())
		log.Println("Background maintenance scheduler started")
	}

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(middleware.MetricsMiddleware())

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Scheduler status
	r.GET("/scheduler/status", func(c *gin.Context) {
		if maintenance != nil {
			c.JSON(200, maintenance.GetStatus())
		} else {
			c.JSON(200, gin.H{"enabled": false, "message": "Scheduler is disabled"})
		}
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/refresh", authHandler.RefreshToken)
		api.GET("/auth/google", authHandler.GoogleAuth)
		api.GET("/auth/google/callback", authHandler.GoogleCallback)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			authed.GET("/auth/me", authHandler.Me)

			// Flashcards
			authed.GET("/flashcards", flashcardHandler.List)
			authed.POST("/flashcards",
				middleware.RateLimitMiddleware(limiter, "flashcards_write"),
				flashcardHandler.Create)
			authed.PUT("/flashcards/:id",
				middleware.RateLimitMiddleware(limiter, "flashcards_write"),
				flashcardHandler.Update)
			authed.DELETE("/flashcards/:id",
				middleware.RateLimitMiddleware(limiter, "flashcards_write"),
				flashcardHandler.Delete)

			// Generations
			authed.POST("/generations",
				middleware.RateLimitMiddleware(limiter, "generate"),
				generationHandler.Create)
			authed.GET("/generations", generationHandler.List)
			authed.POST("/generations/:id/accept", generationHandler.Accept)

			// Account
			authed.DELETE("/users/me", userHandler.DeleteAccount)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
