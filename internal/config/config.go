package config

import (
	"os"
	"strconv"
	"time"

	"print-ticket-server/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	DataPath           string
	StoragePath        string
	MaxFileSize        int64
	UnitRate           int64
	OfficeCounterBin   string
	OfficeCountTimeout time.Duration
	PostgresDSN        string
	SupabaseURL        string
	SupabaseKey        string
	LogLevel           string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		DataPath:           getEnvOrDefault("DATA_PATH", "./data"),
		StoragePath:        getEnvOrDefault("STORAGE_PATH", "./storage"),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		UnitRate:           getEnvInt64OrDefault("UNIT_RATE", 2),                // price per counted page
		OfficeCounterBin:   getEnvOrDefault("OFFICE_COUNTER_BIN", "count-pages"),
		OfficeCountTimeout: getEnvDurationOrDefault("OFFICE_COUNT_TIMEOUT", 30*time.Second),
		PostgresDSN:        getEnvOrDefault("POSTGRES_DSN", ""),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetDataPath returns the directory holding job records and the ticket counter
func (c *AppConfig) GetDataPath() string {
	return c.DataPath
}

// GetStoragePath returns the root of staged and committed document storage
func (c *AppConfig) GetStoragePath() string {
	return c.StoragePath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetUnitRate returns the configured price per counted page
func (c *AppConfig) GetUnitRate() int64 {
	return c.UnitRate
}

// GetOfficeCounterBin returns the external helper binary that counts
// office document pages
func (c *AppConfig) GetOfficeCounterBin() string {
	return c.OfficeCounterBin
}

// GetOfficeCountTimeout returns the deadline for one helper invocation
func (c *AppConfig) GetOfficeCountTimeout() time.Duration {
	return c.OfficeCountTimeout
}

// GetPostgresDSN returns the Postgres connection string; empty selects the
// file-backed store
func (c *AppConfig) GetPostgresDSN() string {
	return c.PostgresDSN
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
