// Package config loads server configuration from BILLPAY_* environment
// variables, optionally preloaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BILLPAY_"

// Storage backends.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Log     LogConfig
	Cache   CacheConfig
	Seed    SeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the store.
type StorageConfig struct {
	Type             string
	DBPath           string
	PostgresURL      string
	PostgresMaxConns int
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level  slog.Level
	Format string // "text" (tint) or "json"
}

// CacheConfig configures the subscriber cache. Size 0 disables it.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// SeedConfig controls provisioning of the sample subscribers.
type SeedConfig struct {
	Enabled       bool
	ElifPassword  string
	AdminPassword string
}

// Load reads the .env file at path if it exists, then the environment.
// Variables already set in the environment win over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return LoadFromEnv()
}

// LoadFromEnv builds the configuration from the process environment.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADDR", ":8080"),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Type:             strings.ToLower(getEnv("STORAGE", StorageSQLite)),
			DBPath:           getEnv("DB_PATH", "./data/billpay.db"),
			PostgresURL:      getEnv("POSTGRES_URL", ""),
			PostgresMaxConns: getEnvInt("POSTGRES_MAX_CONNS", 10),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level:  parseLogLevel(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CACHE_SIZE", 1024),
			TTL:  getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
		Seed: SeedConfig{
			Enabled:       getEnvBool("SEED", false),
			ElifPassword:  getEnv("SEED_PASSWORD_ELIF", ""),
			AdminPassword: getEnv("SEED_PASSWORD_ADMIN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}

	switch c.Storage.Type {
	case StorageSQLite:
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path is required for sqlite storage")
		}
	case StoragePostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q (want %s or %s)", c.Storage.Type, StorageSQLite, StoragePostgres)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%sJWT_SECRET is required", envPrefix)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must not be negative")
	}

	if c.Seed.Enabled && (c.Seed.ElifPassword == "" || c.Seed.AdminPassword == "") {
		return fmt.Errorf("seeding requires %sSEED_PASSWORD_ELIF and %sSEED_PASSWORD_ADMIN", envPrefix, envPrefix)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
