package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/warbler-app/warbler/internal/config"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/internal/workers"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting Warbler activity worker...")

	if !cfg.Kafka.Enabled {
		logger.Fatal("Kafka is disabled; set kafka.enabled to run the worker")
	}

	db, err := repository.NewDatabase(&cfg.Database, gormlogger.Warn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger.Logger)

	activityService := services.NewActivityService(
		repository.NewUserRepository(db.DB),
		repository.NewActivityRepository(db.DB),
		&cfg.Feed,
		logger,
	)
	worker := workers.NewActivityWorker(activityService, consumer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Activity worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	logger.Info("Shutting down worker...")
	cancel()
	<-done

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop activity worker")
	}

	logger.Info("Worker exited")
}
