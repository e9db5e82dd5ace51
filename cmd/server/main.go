package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"casaora/server/config"
	"casaora/server/internal/api"
	"casaora/server/internal/database"
	"casaora/server/internal/models"
	"casaora/server/internal/processor"
	"casaora/server/internal/queue"
	"casaora/server/internal/scheduler"
	"casaora/server/internal/telegram"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Open the gorm handle used by the ingestion pipeline
	gormDB, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm database")
	}

	// Start the record ingestion pipeline
	recordQueue := queue.NewRecordQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, recordQueue, cfg, logger)
	batchProcessor.Start()
	recordQueue.Start()
	defer batchProcessor.Stop()
	defer recordQueue.Close()

	// Configure the alert service
	alerts := telegram.NewService(logger)
	alerts.Configure(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.IsEnabled, &models.AlertFilters{
		MinOverdueCollections: cfg.Telegram.MinOverdueCollections,
		Cities:                cfg.Telegram.Cities,
	})

	// Start the snapshot scheduler
	interval := time.Duration(cfg.Snapshot.IntervalMinutes) * time.Minute
	snapshotScheduler := scheduler.NewScheduler(db, alerts, logger, interval)
	snapshotScheduler.Start()
	defer snapshotScheduler.Stop()

	// Initialize router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	api.SetupRoutes(router, db, recordQueue, cfg, logger)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
