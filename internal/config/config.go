// Package config loads the canteen configuration.
//
// Precedence, lowest first:
//  1. DefaultConfig
//  2. YAML file (Load)
//  3. CANTEEN_* environment variables (LoadFromEnv)
//  4. command-line flags, applied by the caller
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration wraps every validation and parse failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Environment variables read by LoadFromEnv.
const (
	EnvDatabase   = "CANTEEN_DB"
	EnvLogLevel   = "CANTEEN_LOG_LEVEL"
	EnvGuestEmail = "CANTEEN_GUEST_EMAIL"
)

// Config is the canteen configuration file.
type Config struct {
	// Database is the SQLite file holding all persisted collections.
	Database string `yaml:"database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Currency is the symbol printed before amounts.
	Currency string `yaml:"currency"`

	// GuestEmail is recorded on orders placed without a logged-in email.
	GuestEmail string `yaml:"guest_email"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Database:   "canteen.db",
		LogLevel:   "info",
		Currency:   "₹",
		GuestEmail: "guest@canteen.local",
	}
}

// Load reads path over the defaults. Unknown keys are rejected. Fields
// missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %v: %w", path, err, ErrInvalidConfiguration)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overrides fields from CANTEEN_* variables that are set and
// non-empty.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvGuestEmail); v != "" {
		c.GuestEmail = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database path is required: %w", ErrInvalidConfiguration)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(c.GuestEmail) == "" {
		return fmt.Errorf("guest_email must not be empty: %w", ErrInvalidConfiguration)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level. Invalid levels map to Info;
// call Validate first to reject them.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", s, ErrInvalidConfiguration)
	}
}
