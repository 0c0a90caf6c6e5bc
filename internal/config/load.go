package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the optional configuration file at path, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		// Dot segments are resolved lexically; the path is not confined.
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables if set.
func applyEnvOverrides(cfg *Config) error {
	if addr := os.Getenv("CELERIX_BUILD_ADDR"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	if disable := os.Getenv("CELERIX_BUILD_DISABLE_TLS"); disable != "" {
		d, err := strconv.ParseBool(disable)
		if err != nil {
			return fmt.Errorf("invalid CELERIX_BUILD_DISABLE_TLS %q: %w", disable, err)
		}
		cfg.HTTP.TLS = !d
	}
	if limit := os.Getenv("CELERIX_BUILD_MAX_CONNECTIONS"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("invalid CELERIX_BUILD_MAX_CONNECTIONS %q: %w", limit, err)
		}
		cfg.HTTP.MaxConnections = n
	}
	if backend := os.Getenv("CELERIX_BUILD_STORE"); backend != "" {
		cfg.Store.Backend = strings.ToLower(backend)
	}
	if dataPath := os.Getenv("CELERIX_BUILD_DATA"); dataPath != "" {
		cfg.Store.Path = dataPath
	}
	if secret := os.Getenv("CELERIX_BUILD_SECRET"); secret != "" {
		cfg.Secret = secret
	}
	if baseURL := os.Getenv("CELERIX_BUILD_BASE_URL"); baseURL != "" {
		cfg.PublicBaseURL = baseURL
	}
	if ttl := os.Getenv("CELERIX_BUILD_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid CELERIX_BUILD_TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.SupplierTokenTTL = d
	}
	if level := os.Getenv("CELERIX_BUILD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("CELERIX_BUILD_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	return nil
}
