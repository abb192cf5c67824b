package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Supported result store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	CacheRoot   string `json:"cache_root"`
	Backend     string `json:"backend"`
	RedisURL    string `json:"redis_url"`
	LogLevel    string `json:"log_level"`
	WorkerCount int    `json:"worker_count"` // Number of workers for batch invocation
	ForceRun    bool   `json:"force_run"`    // Bypass freshness checks, always execute
}

// LoadConfig loads configuration from environment variables with sensible defaults
func LoadConfig() (*Config, error) {
	cfg := &Config{
		CacheRoot:   getEnvString("CACHE_ROOT", filepath.Join(os.TempDir(), "magicinvoke")),
		Backend:     getEnvString("CACHE_BACKEND", BackendFile),
		RedisURL:    getEnvString("REDIS_URL", "redis://localhost:6379"),
		LogLevel:    getEnvString("LOG_LEVEL", "INFO"),
		WorkerCount: getEnvInt("WORKER_COUNT", 3),
		ForceRun:    getEnvBool("FORCE_RUN", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// validate performs basic validation of the configuration
func (c *Config) validate() error {
	if strings.TrimSpace(c.CacheRoot) == "" {
		return fmt.Errorf("cache root cannot be empty")
	}

	switch c.Backend {
	case BackendFile, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid cache backend %q: must be %s, %s, or %s",
			c.Backend, BackendFile, BackendMemory, BackendRedis)
	}

	// Validate and normalize LogLevel
	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	upperLevel := strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if !validLevels[upperLevel] {
		return fmt.Errorf("invalid log level '%s': must be DEBUG, INFO, WARN, or ERROR", c.LogLevel)
	}
	c.LogLevel = upperLevel

	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	if c.Backend == BackendRedis && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("redis URL cannot be empty when the redis backend is selected")
	}

	return nil
}
