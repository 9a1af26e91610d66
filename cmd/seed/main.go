package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/warbler-app/warbler/internal/config"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/seed"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	messages := flag.Int("messages", 5, "Messages per user")
	follows := flag.Int("follows", 5, "Follow attempts per user")
	likes := flag.Int("likes", 10, "Like attempts per user")
	password := flag.String("password", "password", "Password for every seeded account")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed for fake data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)

	db, err := repository.NewDatabase(&cfg.Database, gormlogger.Warn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	}

	userRepo := repository.NewUserRepository(db.DB)
	auth := services.NewAuthService(db.DB, userRepo, publisher, logger)
	graph := services.NewGraphService(db.DB, userRepo, repository.NewFollowRepository(db.DB), publisher, logger)
	engagement := services.NewEngagementService(db.DB, userRepo, repository.NewMessageRepository(db.DB), repository.NewLikeRepository(db.DB), publisher, logger)

	seeder := seed.NewSeeder(auth, graph, engagement, logger, *seedValue)
	result, err := seeder.Run(context.Background(), seed.Options{
		Users:           *numUsers,
		MessagesPerUser: *messages,
		FollowsPerUser:  *follows,
		LikesPerUser:    *likes,
		Password:        *password,
	})
	if err != nil {
		logger.WithError(err).Fatal("Seeding failed")
	}

	logger.WithField("users", len(result.Users)).Info("Seeded database")
}
