package config

import (
	"os"
	"strconv"
	"time"

	"brokersum/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database    DatabaseConfig
	HuggingFace HuggingFaceConfig
	Server      ServerConfig
	Uploads     UploadConfig
	Ops         OpsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// HuggingFaceConfig holds hosted summarization model settings. The token
// is optional; without it the narrative endpoint reports unavailable.
type HuggingFaceConfig struct {
	Token   string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UploadConfig holds workbook storage and ingestion settings
type UploadConfig struct {
	Dir           string
	MaxFileSize   int64
	ReloadWorkers int
	CacheTTL      time.Duration
}

// OpsConfig holds the health/pprof sidecar settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{URL: dbURL},
		HuggingFace: HuggingFaceConfig{
			Token:   os.Getenv("HF_TOKEN"),
			Model:   getEnvOrDefault("HF_MODEL", "facebook/bart-large-cnn"),
			BaseURL: getEnvOrDefault("HF_BASE_URL", "https://api-inference.huggingface.co"),
			Timeout: getEnvDurationOrDefault("HF_TIMEOUT", 60*time.Second),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Uploads: UploadConfig{
			Dir:           getEnvOrDefault("UPLOAD_DIR", "./uploads"),
			MaxFileSize:   getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024),
			ReloadWorkers: getEnvIntOrDefault("RELOAD_WORKERS", 8),
			CacheTTL:      getEnvDurationOrDefault("DATASET_CACHE_TTL", time.Hour),
		},
		Ops: OpsConfig{
			Port:    getEnvOrDefault("OPS_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
		},
	}

	if cfg.Uploads.ReloadWorkers < 1 {
		return nil, errors.ConfigInvalid("RELOAD_WORKERS must be at least 1")
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
