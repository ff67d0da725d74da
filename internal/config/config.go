// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port       string
	DBPath     string
	ReportsDir string
	SessionTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("MATHQUIZ_PORT", "8080"),
		DBPath:     getEnv("MATHQUIZ_DB", "./data/mathquiz.db"),
		ReportsDir: getEnv("MATHQUIZ_REPORTS_DIR", "./static/reports"),
		SessionTTL: getEnvDuration("MATHQUIZ_SESSION_TTL", 30*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("MATHQUIZ_PORT cannot be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("MATHQUIZ_PORT must be numeric: %q", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("MATHQUIZ_DB cannot be empty")
	}
	if c.ReportsDir == "" {
		return fmt.Errorf("MATHQUIZ_REPORTS_DIR cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("MATHQUIZ_SESSION_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
