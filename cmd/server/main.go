package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/quickbites/backend/internal/api/routes"
	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/internal/database"
	"github.com/quickbites/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()

	// Setup routes
	rewardService := routes.SetupRoutes(router, db, cfg)

	// Sweep rewards left pending by failed wallet credits.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("*/5 * * * *", func() {
		if n, err := rewardService.ReconcilePending(); err != nil {
			logger.Error("Pending reward sweep failed", err)
		} else if n > 0 {
			logger.Info("Reconciled pending rewards: ", n)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule reward sweep", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server starting on port " + port)
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", err)
	}
}
