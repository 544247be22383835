package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	ServerPort        int
	DatabasePath      string
	JWTSecret         string
	BcryptCost        int
	StoreTimeout      time.Duration
	CORSAllowedOrigin string
	ReminderCron      string
	ReminderWindow    time.Duration
}

// ErrMissingJWTSecret is returned when JWT_SECRET is not set. The process
// must refuse to start rather than sign tokens with an empty key.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "5001")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	cost := getEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	return &Config{
		ServerPort:        port,
		DatabasePath:      getEnv("DATABASE_PATH", "./todos.db"),
		JWTSecret:         secret,
		BcryptCost:        cost,
		StoreTimeout:      time.Duration(getEnvInt("STORE_TIMEOUT_SEC", 3)) * time.Second,
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		ReminderCron:      getEnv("REMINDER_CRON", "*/5 * * * *"),
		ReminderWindow:    time.Duration(getEnvInt("REMINDER_WINDOW_HOURS", 24)) * time.Hour,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
