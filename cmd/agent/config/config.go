package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	Token              string
	ClusterID          string
	ActionPollInterval time.Duration
	ActionTimeout      time.Duration
	OtelEnabled        bool
	OtelEndpoint       string
	OtelServiceName    string
	OtelInsecure       bool
}

// Load loads configuration from environment variables.
// Automatically loads .env file if present.
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Token:              getEnv("DO_TOKEN", ""),
		ClusterID:          getEnv("FLOCKER_CLUSTER_ID", ""),
		ActionPollInterval: getEnvDuration("ACTION_POLL_INTERVAL", time.Second),
		ActionTimeout:      getEnvDuration("ACTION_TIMEOUT", 60*time.Second),
		OtelEnabled:        getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:       getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelServiceName:    getEnv("OTEL_SERVICE_NAME", "do-blockdevice-agent"),
		OtelInsecure:       getEnvBool("OTEL_INSECURE", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
