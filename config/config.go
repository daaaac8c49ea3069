package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string

	QuoteAPIURL string
	QuoteAPIKey string

	JWTSecret  string
	SessionTTL time.Duration

	DefaultCash decimal.Decimal

	LogFile string
}

// Load reads configuration from the environment (and a .env file when
// present). The quote API key has no default: the process must not
// start without it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "tradesim"),
		DBPort:      getEnv("DB_PORT", "5432"),
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		QuoteAPIURL: getEnv("QUOTE_API_URL", "https://cloud.iexapis.com"),
		QuoteAPIKey: os.Getenv("QUOTE_API_KEY"),
		JWTSecret:   getEnv("JWT_SECRET", "defaultSecret"),
		SessionTTL:  time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		LogFile:     os.Getenv("LOG_FILE"),
	}

	if cfg.QuoteAPIKey == "" {
		return nil, fmt.Errorf("QUOTE_API_KEY not set")
	}
	if cfg.JWTSecret == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET. Update it in your environment.")
	}

	cash, err := decimal.NewFromString(getEnv("DEFAULT_CASH", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_CASH: %w", err)
	}
	cfg.DefaultCash = cash

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns
// the default integer value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
