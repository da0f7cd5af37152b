package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"avatar-wizard-backend/internal/avatar"
	"avatar-wizard-backend/internal/config"
	"avatar-wizard-backend/internal/database"
	"avatar-wizard-backend/internal/handlers"
	"avatar-wizard-backend/internal/middleware"
	"avatar-wizard-backend/internal/openai"
	"avatar-wizard-backend/internal/storage"
	"avatar-wizard-backend/internal/wizard"
)

func main() {
	// Load .env for local development; the file is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()
	log.Println("Migrations completed successfully")

	fileStore, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	aiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)

	pipeline := avatar.NewPipeline(dbClient, aiClient, fileStore, avatar.Options{
		AnalysisTimeout:   cfg.AnalysisTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
		MaxConcurrent:     cfg.MaxConcurrentGenerations,
		KeepGenerated:     cfg.KeepGeneratedFiles,
	})

	sessions := wizard.NewStore(cfg.SessionTTL)
	go func() {
		for range time.Tick(cfg.SessionTTL / 2) {
			if n := sessions.Evict(); n > 0 {
				log.Printf("Evicted %d idle wizard sessions", n)
			}
		}
	}()

	uploadHandler := handlers.NewUploadHandler(pipeline, sessions)
	avatarHandler := handlers.NewAvatarHandler(pipeline, sessions)
	ordersHandler := handlers.NewOrdersHandler(pipeline, sessions)
	wizardHandler := handlers.NewWizardHandler(sessions)
	filesHandler := handlers.NewFilesHandler(fileStore)

	router := gin.Default()

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api")

	// User-facing pipeline
	api.POST("/upload", uploadHandler.Upload)
	api.POST("/generate-avatar", avatarHandler.Generate)
	api.POST("/submit-order", ordersHandler.SubmitOrder)

	// Wizard session
	api.GET("/wizard", wizardHandler.GetState)
	api.POST("/wizard/advance", wizardHandler.Advance)
	api.POST("/wizard/retreat", wizardHandler.Retreat)
	api.POST("/wizard/reset", wizardHandler.Reset)
	api.POST("/wizard/confirm-preview", wizardHandler.ConfirmPreview)
	api.POST("/wizard/contact", wizardHandler.SetContact)

	// Administrative order endpoints
	admin := api.Group("/orders")
	admin.Use(middleware.AdminAuth(cfg.AdminJWTSecret))
	admin.GET("", ordersHandler.ListOrders)
	admin.GET("/:id", ordersHandler.GetOrder)
	admin.PATCH("/:id/status", ordersHandler.UpdateStatus)

	// Stored originals and generated previews
	router.GET("/uploads/*filepath", filesHandler.Serve)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
