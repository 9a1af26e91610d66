package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/warbler-app/warbler/internal/config"
	"github.com/warbler-app/warbler/internal/handlers"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/internal/session"
	"github.com/warbler-app/warbler/pkg/cache"
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
	logger.Info("Starting Warbler API server...")

	sqlLogLevel := gormlogger.Info
	if cfg.Server.Mode == "release" {
		sqlLogLevel = gormlogger.Warn
	}

	db, err := repository.NewDatabase(&cfg.Database, sqlLogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	} else {
		logger.Warn("Kafka disabled, domain events will not be published")
	}

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	activityRepo := repository.NewActivityRepository(db.DB)

	svc := handlers.Services{
		Auth:       services.NewAuthService(db.DB, userRepo, publisher, logger),
		Graph:      services.NewGraphService(db.DB, userRepo, followRepo, publisher, logger),
		Engagement: services.NewEngagementService(db.DB, userRepo, messageRepo, likeRepo, publisher, logger),
		Feed:       services.NewFeedService(userRepo, messageRepo, followRepo, likeRepo, &cfg.Feed, logger),
		Activity:   services.NewActivityService(userRepo, activityRepo, &cfg.Feed, logger),
		Sessions:   session.NewManager(redisClient, cfg.Session.Secret, cfg.Session.TTL),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(svc, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
