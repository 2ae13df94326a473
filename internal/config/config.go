package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"stockboard/internal/errors"
)

// Config represents the complete application configuration for both binaries
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Dashboard DashboardConfig
	API       APIConfig
	LogLevel  string
}

// ServerConfig holds dashboard web server settings
type ServerConfig struct {
	Port string
}

// BackendConfig describes how the dashboard reaches the analysis service
type BackendConfig struct {
	URL     string
	Timeout time.Duration // zero means no timeout
}

// DashboardConfig holds presentation switches
type DashboardConfig struct {
	PieDemoFallback bool
	ChartStyleFile  string
}

// APIConfig holds settings of the reference analysis backend
type APIConfig struct {
	Port                string
	GinMode             string
	MaxUploadMB         int
	MaxConcurrentParses int
	RiskFreeRate        float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnvOrDefault("BACKEND_URL", "http://127.0.0.1:5000"), "/"),
			Timeout: getEnvDurationOrDefault("BACKEND_TIMEOUT", 0),
		},
		Dashboard: DashboardConfig{
			PieDemoFallback: getEnvBoolOrDefault("PIE_DEMO_FALLBACK", false),
			ChartStyleFile:  getEnvOrDefault("CHART_STYLE_FILE", ""),
		},
		API: APIConfig{
			Port:                getEnvOrDefault("API_PORT", "5000"),
			GinMode:             getEnvOrDefault("GIN_MODE", "debug"),
			MaxUploadMB:         getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
			MaxConcurrentParses: getEnvIntOrDefault("MAX_CONCURRENT_PARSES", 4),
			RiskFreeRate:        getEnvFloatOrDefault("RISK_FREE_RATE", 0.01),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("BACKEND_URL must be an absolute http(s) URL")
	}
	if config.Backend.Timeout < 0 {
		return errors.ConfigInvalid("BACKEND_TIMEOUT cannot be negative")
	}
	if config.API.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	switch config.API.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.API.MaxConcurrentParses <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_PARSES must be positive")
	}
	return nil
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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
