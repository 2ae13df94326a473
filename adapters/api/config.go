package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ClientConfig holds configuration for the analysis service client
type ClientConfig struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"` // zero disables the client timeout
	UserAgent string        `json:"user_agent"`
}

// DefaultClientConfig returns defaults pointing at a local backend
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   0,
		UserAgent: "stockboard-dashboard",
	}
}

// Validate checks if the configuration is valid
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return &ValidationError{Field: "BaseURL", Message: "cannot be empty"}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "BaseURL", Message: "must be an absolute URL"}
	}
	if c.Timeout < 0 {
		return &ValidationError{Field: "Timeout", Message: "cannot be negative"}
	}
	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}
