// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mirror drivers
const (
	MirrorNone     = ""
	MirrorMongo    = "mongo"
	MirrorPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Storage
	DataFile   string
	DataFormat string

	// Metrics
	MetricsNamespace string

	// Mirror
	MirrorDriver  string
	MirrorTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresDSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:            getEnv("PORT", "8080"),
		ReadTimeout:     time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout:    time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 10)) * time.Second,

		DataFile:   getEnv("DATA_FILE", "record/records.json"),
		DataFormat: strings.ToLower(getEnv("DATA_FORMAT", "json")),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "travel_records"),

		MirrorDriver:  strings.ToLower(getEnv("MIRROR_DRIVER", MirrorNone)),
		MirrorTimeout: time.Duration(getEnvAsInt("MIRROR_TIMEOUT", 10)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "travel_records"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks option values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.DataFormat {
	case "json", "jsonl":
	default:
		return fmt.Errorf("DATA_FORMAT must be json or jsonl, got %q", c.DataFormat)
	}
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("DATA_FILE must not be empty")
	}

	switch c.MirrorDriver {
	case MirrorNone:
	case MirrorMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MIRROR_DRIVER=mongo requires MONGODB_DSN")
		}
	case MirrorPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("MIRROR_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown MIRROR_DRIVER %q", c.MirrorDriver)
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
