package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database drivers understood by database.New.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	DatabaseDriver   string
	DatabaseURL      string
	AutoMigrate      bool
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	EnableHSTS       bool
	OIDCProvider     string
	RedisURL         string
	RateLimitDefault string
	RabbitMQURL      string
	RabbitMQPrefetch int
	CatalogPath      string
	OpenAIKey        string
	AIModel          string
	AIBaseURL        string
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return loadFrom(os.Getenv)
}

// AIEnabled reports whether preference suggestions can be served.
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}

// EventsEnabled reports whether tool-use events are published to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

type lookupFunc func(string) string

func loadFrom(lookup lookupFunc) (*Config, error) {
	cfg := &Config{
		DatabaseDriver:   strings.ToLower(lookup.getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:      lookup.getEnv("DATABASE_URL", ""),
		AutoMigrate:      lookup.getEnvBool("DB_AUTO_MIGRATE", true),
		ServerPort:       lookup.getEnv("SERVER_PORT", "8080"),
		BaseURL:          lookup.getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      lookup.getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:       lookup.getEnvBool("ENABLE_HSTS", false),
		OIDCProvider:     lookup.getEnv("OIDC_PROVIDER", "clerk"),
		RedisURL:         lookup.getEnv("REDIS_URL", ""),
		RateLimitDefault: lookup.getEnv("RATE_LIMIT_DEFAULT", "100-M"),
		RabbitMQURL:      lookup.getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: lookup.getEnvInt("RABBITMQ_PREFETCH", 10),
		CatalogPath:      lookup.getEnv("CATALOG_PATH", ""),
		OpenAIKey:        lookup.getEnv("OPENAI_API_KEY", ""),
		AIModel:          lookup.getEnv("AI_MODEL", ""),
		AIBaseURL:        lookup.getEnv("AI_BASE_URL", ""),
		WorkerDebugMode:  lookup.getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  lookup.getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      lookup.getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     lookup.getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want %s or %s)", cfg.DatabaseDriver, DriverPostgres, DriverSQLite)
	}

	if cfg.RabbitMQPrefetch < 1 {
		return nil, fmt.Errorf("RABBITMQ_PREFETCH must be at least 1, got %d", cfg.RabbitMQPrefetch)
	}

	return cfg, nil
}

func (lookup lookupFunc) getEnv(key, defaultValue string) string {
	if value := lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (lookup lookupFunc) getEnvBool(key string, defaultValue bool) bool {
	if value := lookup(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (lookup lookupFunc) getEnvInt(key string, defaultValue int) int {
	if value := lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
