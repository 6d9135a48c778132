package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Storage
	StorageURL  string
	RedisPrefix string
	DBMaxConns  int

	// RabbitMQ
	RabbitMQURL string

	// Timers
	TimerTickInterval time.Duration
	TimerFlushEvery   int

	// Persistence
	PersistTimeout          time.Duration
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StorageURL:  getEnv("GESTACHES_STORAGE_URL", DefaultStoragePath()),
		RedisPrefix: getEnv("GESTACHES_REDIS_PREFIX", "gestaches"),
		DBMaxConns:  getIntEnv("DB_MAX_CONNS", 0),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		TimerTickInterval: getDurationEnv("TIMER_TICK_INTERVAL", time.Second),
		TimerFlushEvery:   getIntEnv("TIMER_FLUSH_EVERY", 10),

		PersistTimeout:          getDurationEnv("PERSIST_TIMEOUT", 5*time.Second),
		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 3),
		BreakerOpenTimeout:      getDurationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second),
	}

	if cfg.TimerFlushEvery <= 0 {
		cfg.TimerFlushEvery = 10
	}
	if cfg.TimerTickInterval <= 0 {
		cfg.TimerTickInterval = time.Second
	}
	if cfg.BreakerFailureThreshold <= 0 {
		cfg.BreakerFailureThreshold = 3
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DefaultStoragePath returns the SQLite file used when no storage URL is set.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gestaches", "data.db")
	}
	return filepath.Join(home, ".gestaches", "data.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
