package utils

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Stripe   StripeConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MaxConns       int32
	Migrate        bool
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type StripeConfig struct {
	SecretKey string
}

type BookingConfig struct {
	// AppID scopes the gateway service pool; one tenant per deployment.
	AppID string
	// MaxWindowDays caps the availability horizon a single request may ask for.
	MaxWindowDays int
	// ServiceCacheTTLSeconds bounds staleness of the cached service pool.
	ServiceCacheTTLSeconds int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIGRATE", true)
	viper.SetDefault("DB_MIGRATIONS_PATH", "migrations")
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("KAFKA_TOPIC", "booking.events")
	viper.SetDefault("BOOKING_MAX_WINDOW_DAYS", 92)
	viper.SetDefault("BOOKING_SERVICE_CACHE_TTL_SECONDS", 300)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			Name:           viper.GetString("DB_NAME"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASS"),
			MaxConns:       viper.GetInt32("DB_MAX_CONNS"),
			Migrate:        viper.GetBool("DB_MIGRATE"),
			MigrationsPath: viper.GetString("DB_MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Stripe: StripeConfig{
			SecretKey: viper.GetString("STRIPE_SECRET_KEY"),
		},
		Booking: BookingConfig{
			AppID:                  viper.GetString("BOOKING_APP_ID"),
			MaxWindowDays:          viper.GetInt("BOOKING_MAX_WINDOW_DAYS"),
			ServiceCacheTTLSeconds: viper.GetInt("BOOKING_SERVICE_CACHE_TTL_SECONDS"),
		},
	}

	return config, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
