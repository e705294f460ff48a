package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backend selectors
const (
	StorageBackendRedis    = "redis"
	StorageBackendPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	ServerPort          string
	FrontendURL         string
	StorageBackend      string
	RedisURL            string
	DatabaseURL         string
	RabbitMQURL         string
	RabbitMQPrefetch    int
	OpenAIKey           string
	AIModel             string
	AIBaseURL           string
	JournalFeedURL      string
	JournalSyncInterval time.Duration
	AuthTokenSecret     string
	RateLimitRate       string
	EnableHSTS          bool
	ServerDebugMode     bool
	WorkerDebugMode     bool
	OTELEnabled         bool
	OTELEndpoint        string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		StorageBackend:      getEnv("STORAGE_BACKEND", StorageBackendRedis),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:    getEnvInt("RABBITMQ_PREFETCH", 1),
		OpenAIKey:           getEnv("OPENAI_API_KEY", ""),
		AIModel:             getEnv("AI_MODEL", ""),
		AIBaseURL:           getEnv("AI_BASE_URL", ""),
		JournalFeedURL:      getEnv("JOURNAL_FEED_URL", ""),
		JournalSyncInterval: getEnvDuration("JOURNAL_SYNC_INTERVAL", 30*time.Second),
		AuthTokenSecret:     getEnv("AUTH_TOKEN_SECRET", ""),
		RateLimitRate:       getEnv("AI_RATE_LIMIT", "5-M"),
		EnableHSTS:          getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:     getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:     getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:         getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.StorageBackend {
	case StorageBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case StorageBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (must be 'redis' or 'postgres')", cfg.StorageBackend)
	}

	if cfg.AuthTokenSecret == "" {
		return nil, fmt.Errorf("AUTH_TOKEN_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
