package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vibe-coding-backend/internal/claude"
	"vibe-coding-backend/internal/config"
	"vibe-coding-backend/internal/database"
	"vibe-coding-backend/internal/handlers"
	"vibe-coding-backend/internal/middleware"
	"vibe-coding-backend/internal/services"
	"vibe-coding-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		logrus.Fatal("DATABASE_URL is required")
	}

	claudeClient := claude.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicMaxTokens, cfg.AnthropicTemperature)

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize Supabase client")
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize storage client")
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	dbClient, err := supabase.NewDatabaseClient(dbURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database client")
	}
	defer dbClient.Close()

	migrator, err := database.NewMigrator(dbURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize migrator")
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		logrus.WithError(err).Fatal("migration failed")
	}
	migrator.Close()
	logrus.Info("migrations completed")

	// Telemetry rows for every model invocation.
	claudeClient.SetRequestLogger(dbClient)

	generationService := services.NewGenerationService(dbClient, claudeClient, realtimeClient)

	relayHandler := handlers.NewRelayHandler(claudeClient)
	projectsHandler := handlers.NewProjectsHandler(dbClient)
	generateHandler := handlers.NewGenerateHandler(generationService)
	messagesHandler := handlers.NewMessagesHandler(dbClient)
	filesHandler := handlers.NewFilesHandler(dbClient)
	historyHandler := handlers.NewHistoryHandler(dbClient)
	previewHandler := handlers.NewPreviewHandler(dbClient)
	uploadHandler := handlers.NewUploadHandler(storageClient)
	profileHandler := handlers.NewProfileHandler(dbClient)
	adminHandler := handlers.NewAdminHandler(dbClient, storageClient)

	router := gin.Default()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthHandler)

	// Unauthenticated LLM relay.
	router.POST("/api/claude", relayHandler.Relay)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)

	api.POST("/projects/:project_id/generate", generateHandler.Generate)
	api.GET("/projects/:project_id/messages", messagesHandler.ListMessages)
	api.GET("/projects/:project_id/files", filesHandler.ListFiles)
	api.GET("/projects/:project_id/history", historyHandler.ListHistory)
	api.POST("/projects/:project_id/revert", historyHandler.Revert)
	api.GET("/projects/:project_id/preview", previewHandler.GetPreview)

	api.POST("/uploads", uploadHandler.Upload)

	api.GET("/me", profileHandler.GetProfile)
	api.POST("/me/plan", profileHandler.PurchasePlan)

	api.GET("/admin/users", adminHandler.ListUsers)
	api.PATCH("/admin/users/:user_id", adminHandler.UpdateUser)
	api.DELETE("/admin/users/:user_id", adminHandler.DeleteUser)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logrus.WithField("port", port).Info("server starting")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
