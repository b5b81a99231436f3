// Package config provides configuration loading for taskpilot.
// The configuration is built once at process start from defaults, an
// optional TOML file, and environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration. It is constructed once and
// passed by reference into the store and classifier constructors;
// business logic never reads the environment directly.
// Fields are ordered to minimize memory padding.
type Config struct {
	Addr                string        // HTTP listen address
	DatabasePath        string        // SQLite database file
	GeminiAPIKey        string        // Credential for the remote classifier
	GeminiModel         string        // Primary classifier model
	GeminiFallbackModel string        // Fallback classifier model
	VocabularyPath      string        // Optional YAML tag-vocabulary override
	LogLevel            string        // debug, info, warn, error
	APITimeout          time.Duration // Bound on each classifier call
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Addr:                ":8080",
		DatabasePath:        "tasks.db",
		GeminiModel:         "gemini-2.5-pro",
		GeminiFallbackModel: "gemini-1.5-flash",
		LogLevel:            "info",
		APITimeout:          30 * time.Second,
	}
}

// fileConfig mirrors the optional TOML configuration file.
type fileConfig struct {
	Addr                *string `toml:"addr"`
	DatabasePath        *string `toml:"database_path"`
	GeminiAPIKey        *string `toml:"gemini_api_key"`
	GeminiModel         *string `toml:"gemini_model"`
	GeminiFallbackModel *string `toml:"gemini_fallback_model"`
	VocabularyPath      *string `toml:"vocabulary_path"`
	LogLevel            *string `toml:"log_level"`
	APITimeoutSeconds   *int    `toml:"api_timeout_seconds"`
}

// Load returns the merged configuration: defaults <- file <- environment.
// The file path comes from TASKPILOT_CONFIG; without it, taskpilot.toml
// in the working directory is used when present.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("TASKPILOT_CONFIG")
	explicit := path != ""
	if path == "" {
		path = "taskpilot.toml"
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.Addr != nil {
		c.Addr = *file.Addr
	}
	if file.DatabasePath != nil {
		c.DatabasePath = *file.DatabasePath
	}
	if file.GeminiAPIKey != nil {
		c.GeminiAPIKey = *file.GeminiAPIKey
	}
	if file.GeminiModel != nil {
		c.GeminiModel = *file.GeminiModel
	}
	if file.GeminiFallbackModel != nil {
		c.GeminiFallbackModel = *file.GeminiFallbackModel
	}
	if file.VocabularyPath != nil {
		c.VocabularyPath = *file.VocabularyPath
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
	}
	if file.APITimeoutSeconds != nil {
		c.APITimeout = time.Duration(*file.APITimeoutSeconds) * time.Second
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if v := os.Getenv("TASKPILOT_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("TASKPILOT_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}
	if v := os.Getenv("GEMINI_FALLBACK_MODEL"); v != "" {
		c.GeminiFallbackModel = v
	}
	if v := os.Getenv("TASKPILOT_VOCABULARY"); v != "" {
		c.VocabularyPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("API_TIMEOUT must be a positive number of seconds, got %q", v)
		}
		c.APITimeout = time.Duration(seconds) * time.Second
	}
	return nil
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
