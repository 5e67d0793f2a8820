package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Registry   RegistryConfig
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	Server     ServerConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Validation ValidationConfig
	Bulk       BulkConfig
}

// RegistryConfig holds the road-name address registry (juso) configuration
type RegistryConfig struct {
	APIKey       string
	APIURL       string
	CountPerPage int
	Timeout      int           // seconds
	RateInterval time.Duration // minimum spacing between registry calls
	Enabled      bool
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the registry response cache configuration.
// An empty URL disables caching.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
	PoolSize int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds the OpenAI-compatible chat API used for detail normalization
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body (e.g., {"chat_template_kwargs":{"thinking":true}})
	Timeout         int
	Enabled         bool
}

// ValidationConfig holds process-wide detail validation settings.
// Read once at startup and handed to the validator explicitly.
type ValidationConfig struct {
	AIFallbackEnabled     bool
	AIConfidenceThreshold float64
}

// BulkConfig holds bulk resolution settings
type BulkConfig struct {
	Concurrency      int
	BatchSize        int
	BatchPause       time.Duration
	MaxItems         int
	MaxAddressLength int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Registry: RegistryConfig{
			APIKey:       getEnv("JUSO_API_KEY", ""),
			APIURL:       getEnv("JUSO_API_URL", "https://business.juso.go.kr/addrlink/addrLinkApi.do"),
			CountPerPage: getEnvAsInt("JUSO_COUNT_PER_PAGE", 10),
			Timeout:      getEnvAsInt("JUSO_TIMEOUT", 5),
			RateInterval: getEnvAsDuration("JUSO_RATE_INTERVAL", 20*time.Millisecond),
			Enabled:      getEnv("JUSO_API_KEY", "") != "",
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "address"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", 24*time.Hour),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.1),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 512),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 15),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Validation: ValidationConfig{
			AIFallbackEnabled:     getEnvAsBool("AI_FALLBACK_ENABLED", false),
			AIConfidenceThreshold: getEnvAsFloat("AI_CONFIDENCE_THRESHOLD", 0.9),
		},
		Bulk: BulkConfig{
			Concurrency:      getEnvAsInt("BULK_CONCURRENCY", 5),
			BatchSize:        getEnvAsInt("BULK_BATCH_SIZE", 20),
			BatchPause:       getEnvAsDuration("BULK_BATCH_PAUSE", 200*time.Millisecond),
			MaxItems:         getEnvAsInt("BULK_MAX_ITEMS", 1000),
			MaxAddressLength: getEnvAsInt("BULK_MAX_ADDRESS_LENGTH", 100),
		},
	}

	if cfg.Validation.AIConfidenceThreshold <= 0 || cfg.Validation.AIConfidenceThreshold > 1 {
		return nil, fmt.Errorf("AI_CONFIDENCE_THRESHOLD must be in (0, 1], got %f", cfg.Validation.AIConfidenceThreshold)
	}
	if cfg.Bulk.Concurrency <= 0 {
		cfg.Bulk.Concurrency = 1
	}
	if cfg.Bulk.BatchSize <= 0 {
		cfg.Bulk.BatchSize = 1
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
