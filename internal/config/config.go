package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	API   APIConfig
	Redis RedisConfig
	OTEL  OTELConfig
}

// APIConfig holds DRP backend connection configuration
type APIConfig struct {
	// BaseURL is the root of the DRP REST API, e.g. https://api.drp.example.com
	BaseURL string
	// DefaultOrganizationID is the environment-level tenant fallback, used
	// only for requests made before a session resolves an organization.
	DefaultOrganizationID string
	// CredentialsFile is where the file storage keeps the session record.
	CredentialsFile string
}

// RedisConfig holds the optional Redis credential-storage configuration.
// When Addr is empty the file storage is used instead.
type RedisConfig struct {
	Addr      string
	Password  string
	KeyPrefix string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables.
// It attempts to load from .env file first, then falls back to system env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:               getEnv("DRP_API_BASE", ""),
			DefaultOrganizationID: getEnv("DRP_ORGANIZATION_ID", ""),
			CredentialsFile:       getEnv("DRP_CREDENTIALS_FILE", defaultCredentialsFile()),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "drp:session"),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "drp-admin"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("DRP_API_BASE is required")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is set")
	}
	return nil
}

// defaultCredentialsFile places the session record under the user's home
// directory; falls back to the working directory when home is unknown.
func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drp-credentials.json"
	}
	return filepath.Join(home, ".drp", "credentials.json")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
