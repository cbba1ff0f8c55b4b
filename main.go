// main.go
package main

import (
	"log"

	"appointment-booking/cmd"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/notify"
	"appointment-booking/internal/payment"
	"appointment-booking/internal/wire"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/database"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Apply pending migrations
	if config.Database.Migrate {
		applied, err := database.Migrate(config.Database)
		if err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		if applied {
			logger.Info("Database migrations applied")
		}
	}

	// Optional redis cache; a nil cache is a no-op
	c, err := cache.New(config.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if c != nil {
		defer c.Close()
	}

	// Booking event sink
	var events notify.Publisher = notify.Nop{}
	if len(config.Kafka.Brokers) > 0 {
		kafkaPublisher := notify.NewKafkaPublisher(config.Kafka, logger)
		defer kafkaPublisher.Close()
		events = kafkaPublisher
	}

	// Payment collaborator
	checkout := payment.NewStripeCheckout(config.Stripe, logger)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, checkout, events, c, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
