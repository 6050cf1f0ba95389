package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rentwatch/server/config"
	"rentwatch/server/internal/api"
	"rentwatch/server/internal/database"
	"rentwatch/server/internal/ingest"
	"rentwatch/server/internal/processor"
	"rentwatch/server/internal/queue"
	"rentwatch/server/internal/scheduler"
	"rentwatch/server/internal/scraper"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	neighborhoods, err := config.LoadNeighborhoods(cfg.NeighborhoodsFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load neighborhoods")
	}
	logger.Infof("Tracking %d neighborhoods", len(neighborhoods))

	logger.Infof("Using database at: %s", cfg.DatabasePath)
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	zap := scraper.NewScraper(neighborhoods, scraper.Options{
		BaseURL:  cfg.Scraper.BaseURL,
		PageSize: cfg.Scraper.PageSize,
		Timeout:  time.Duration(cfg.Scraper.RequestTimeout) * time.Second,
		Delay:    time.Duration(cfg.Scraper.RequestDelayMs) * time.Millisecond,
		MaxPages: cfg.Scraper.MaxPages,
	}, logger)

	// One-shot mode: run a single capture and exit, propagating failure.
	if cfg.RunOnce {
		manager := ingest.NewManager(zap, db, nil, logger)
		total, err := manager.RunOnce()
		if err != nil {
			logger.WithError(err).Fatal("Capture run failed")
		}
		logger.Infof("Capture run processed %d listings", total)
		return
	}

	gormDB, err := database.OpenGorm(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open batch write connection")
	}

	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, listingQueue, cfg, logger)
	batchProcessor.Start()
	defer batchProcessor.Stop()

	manager := ingest.NewManager(zap, db, listingQueue, logger)

	interval := time.Duration(cfg.Scheduler.RunIntervalHours * float64(time.Hour))
	sched := scheduler.NewScheduler(manager, interval, logger)
	sched.Start()
	defer sched.Stop()

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, api.NewHandler(db, manager, logger))

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
