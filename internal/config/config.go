// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// secretKeySize is the AES-256 key length in bytes.
const secretKeySize = 32

// ErrAPIURLNotSet is returned by Validate when no backend URL is configured.
var ErrAPIURLNotSet = errors.New("backend URL not configured: set PREDICTCR_API_URL or pass --api-url")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL      string
	ContentType string
	DBPath      string
	SecretKey   []byte // nil when session persistence is disabled.
	DownloadDir string // Empty selects the user's Downloads directory.
	LogLevel    slog.Level
}

// HasSecretKey reports whether sessions can be persisted across runs.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) == secretKeySize
}

// Validate checks settings that may have been overridden after Load.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return ErrAPIURLNotSet
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("PREDICTCR_API_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("PREDICTCR_API_URL %q must be an http or https URL", c.APIURL)
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// PREDICTCR_API_URL is checked by Validate, not here, so that a command-line
// flag can still supply it. Optional variables with defaults:
// PREDICTCR_CONTENT_TYPE (application/json), PREDICTCR_DB_PATH (predictcr.db),
// PREDICTCR_DOWNLOAD_DIR (~/Downloads), PREDICTCR_LOG_LEVEL (info).
// PREDICTCR_SECRET_KEY, when set, must be 64 hex characters.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:      os.Getenv("PREDICTCR_API_URL"),
		ContentType: "application/json",
		DBPath:      "predictcr.db",
		DownloadDir: os.Getenv("PREDICTCR_DOWNLOAD_DIR"),
		LogLevel:    slog.LevelInfo,
	}

	if v, ok := os.LookupEnv("PREDICTCR_CONTENT_TYPE"); ok && v != "" {
		cfg.ContentType = v
	}

	if v, ok := os.LookupEnv("PREDICTCR_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("PREDICTCR_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("PREDICTCR_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != secretKeySize {
			return nil, fmt.Errorf("PREDICTCR_SECRET_KEY must be %d hex characters, got %d", secretKeySize*2, len(v))
		}
		cfg.SecretKey = key
	}

	if v, ok := os.LookupEnv("PREDICTCR_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PREDICTCR_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return cfg, nil
}
