// Package config loads the celerix-build daemon configuration from a YAML
// file overlaid by CELERIX_BUILD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-build/internal/engine"
	"github.com/celerix-dev/celerix-build/internal/vault"
)

type Config struct {
	HTTP             HTTPConfig    `yaml:"http"`
	Store            StoreConfig   `yaml:"store"`
	Secret           string        `yaml:"secret"`
	PublicBaseURL    string        `yaml:"public_base_url"`
	SupplierTokenTTL time.Duration `yaml:"supplier_token_ttl"`
	Log              LogConfig     `yaml:"log"`
	SeedTemplates    bool          `yaml:"seed_templates"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	TLS            bool          `yaml:"tls"`
	TLSHosts       []string      `yaml:"tls_hosts"`
	MaxConnections int           `yaml:"max_connections"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type StoreConfig struct {
	// Backend is one of memory, json or sqlite.
	Backend string `yaml:"backend"`
	// Path is the data directory (json) or database file (sqlite).
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:           ":7080",
			MaxConnections: 100,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
		},
		Store:            StoreConfig{Backend: engine.BackendJSON},
		PublicBaseURL:    "http://localhost:7080/api",
		SupplierTokenTTL: 14 * 24 * time.Hour,
		Log:              LogConfig{Level: "info", Format: "text"},
		SeedTemplates:    true,
	}
}

// applyDerived fills values that depend on other settings.
func (c *Config) applyDerived() {
	if c.Store.Path != "" {
		return
	}
	switch c.Store.Backend {
	case engine.BackendJSON:
		c.Store.Path = "./data"
	case engine.BackendSQLite:
		c.Store.Path = "./data/build.db"
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr must be set")
	}
	if c.HTTP.MaxConnections <= 0 {
		return fmt.Errorf("http.max_connections must be positive, got %d", c.HTTP.MaxConnections)
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 || c.HTTP.IdleTimeout <= 0 {
		return errors.New("http timeouts must be positive")
	}
	switch c.Store.Backend {
	case engine.BackendMemory:
	case engine.BackendJSON, engine.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path must be set for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store.backend %q (want memory, json or sqlite)", c.Store.Backend)
	}
	if c.Secret != "" {
		if _, err := vault.ParseKey(c.Secret); err != nil {
			return fmt.Errorf("invalid secret: %w", err)
		}
	}
	if c.SupplierTokenTTL <= 0 {
		return errors.New("supplier_token_ttl must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("unknown log.format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// Key returns the token sealing key, or nil when none is configured.
func (c Config) Key() ([]byte, error) {
	if c.Secret == "" {
		return nil, nil
	}
	return vault.ParseKey(c.Secret)
}

// NewLogger builds the structured logger described by the log settings.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log.level %q (want debug, info, warn or error)", s)
}
