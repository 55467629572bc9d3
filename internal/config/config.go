// Package config loads application settings from an optional YAML file with
// environment-variable overrides. Engine lookup lists live in
// scanner.Config; this package covers the process-level knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process-level settings.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// CORSOrigin is the allowed origin for the browser frontend.
	CORSOrigin string `yaml:"cors_origin"`

	// JWTSecret signs admin session tokens. Must be overridden in
	// production.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is the admin session lifetime. Set via token_ttl_hours in
	// YAML.
	TokenTTL time.Duration `yaml:"-"`

	// ReputationDelay is the simulated latency of the stub reputation
	// checker. Set via reputation_delay_ms in YAML.
	ReputationDelay time.Duration `yaml:"-"`

	// YAML-facing integer forms of the durations above.
	TokenTTLHours     int `yaml:"token_ttl_hours"`
	ReputationDelayMS int `yaml:"reputation_delay_ms"`
}

// Default returns development defaults.
func Default() *Config {
	return &Config{
		ListenAddr:      ":3001",
		DBPath:          "safelink.db",
		CORSOrigin:      "*",
		JWTSecret:       "fallback-secret-change-in-production",
		TokenTTL:        7 * 24 * time.Hour,
		ReputationDelay: 500 * time.Millisecond,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped if
// path is empty or missing), then environment variables. A .env file in the
// working directory is loaded first so env overrides work in development too.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(cfg.TokenTTLHours) * time.Hour
	}
	if cfg.ReputationDelayMS > 0 {
		cfg.ReputationDelay = time.Duration(cfg.ReputationDelayMS) * time.Millisecond
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SAFELINK_ADDR"); v != "" {
		c.ListenAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
	if v := os.Getenv("SAFELINK_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SAFELINK_CORS_ORIGIN"); v != "" {
		c.CORSOrigin = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			c.TokenTTL = time.Duration(h) * time.Hour
		}
	}
	if v := os.Getenv("SAFELINK_REPUTATION_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.ReputationDelay = time.Duration(ms) * time.Millisecond
		}
	}
}
