// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Storage
	StorageBackend string // "memory" | "file" | "postgres" | "redis"
	DataDir        string
	DatabaseURL    string
	RedisURL       string
	AppPrefix      string // persisted blob key prefix

	// Security
	JWTSecret      string
	TokenTTLHours  int
	AdminID        string
	AdminPassword  string
	AllowedOrigins []string
	RateLimitRPM   int

	// External collaborators
	GeocoderURL string
}

// CasesKey is the persisted-blob key for the case list.
func (c *Config) CasesKey() string { return c.AppPrefix + "_rescue_requests" }

// RescuersKey is the persisted-blob key for the account roster.
func (c *Config) RescuersKey() string { return c.AppPrefix + "_rescuers" }

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		AppPrefix:      getEnv("APP_PREFIX", "hopespot"),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTLHours:  getEnvInt("TOKEN_TTL_HOURS", 12),
		AdminID:        getEnv("ADMIN_ID", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),

		GeocoderURL: getEnv("GEOCODER_URL", ""),
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if cfg.AdminPassword == "admin123" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
		if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
