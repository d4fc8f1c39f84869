// Package config loads tool configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all settings shared by the subcommands.
type Config struct {
	DBFile        string
	ImageCacheDir string
	AssetHost     string
	HTTPTimeout   time.Duration
	ListenAddr    string
	LogLevel      string
	LogFormat     string
}

// Load reads configuration from environment variables, falling back to the
// defaults the vendor tooling has always used.
func Load() (*Config, error) {
	cfg := &Config{
		DBFile:        getEnv("JLC_DB_FILE", "jlc.db"),
		ImageCacheDir: getEnv("JLC_IMAGE_CACHE_DIR", "imageCache"),
		AssetHost:     getEnv("JLC_ASSET_HOST", "https://assets.lcsc.com"),
		HTTPTimeout:   getEnvDuration("JLC_HTTP_TIMEOUT", 3*time.Second),
		ListenAddr:    getEnv("JLC_LISTEN_ADDR", "localhost:8710"),
		LogLevel:      getEnv("JLC_LOG_LEVEL", "info"),
		LogFormat:     getEnv("JLC_LOG_FORMAT", "text"),
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is usable.
func (c *Config) Validate() error {
	if c.DBFile == "" {
		return fmt.Errorf("database file is required")
	}
	if c.ImageCacheDir == "" {
		return fmt.Errorf("image cache directory is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid http timeout: %s", c.HTTPTimeout)
	}
	return nil
}

// FailedListFile is the durable list of parts with no resolvable image.
// It lives inside the image cache directory, next to the images it refers to.
func (c *Config) FailedListFile() string {
	return filepath.Join(c.ImageCacheDir, "failedParts.txt")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
