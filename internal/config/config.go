package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TelegramConfig struct {
	Token   string `yaml:"token"`
	AdminID int64  `yaml:"admin_id"`
}

type RecordsConfig struct {
	DefaultTTL     int  `yaml:"default_ttl"`
	DefaultProxied bool `yaml:"default_proxied"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // Postgres; when empty the file backend under Dir is used
	Dir string `yaml:"dir"`
}

type ProbeConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout is the per-lookup and per-dial budget for probes.
func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Records  RecordsConfig  `yaml:"records"`
	Database DatabaseConfig `yaml:"database"`
	Probe    ProbeConfig    `yaml:"probe"`
}

// Load reads the YAML config at path, applies defaults, lets the
// TELEGRAM_TOKEN environment variable override the file, and validates the
// result. A missing file is fine as long as the token comes from the
// environment.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// env-only setup
	default:
		return nil, err
	}

	if tok := os.Getenv("TELEGRAM_TOKEN"); tok != "" {
		cfg.Telegram.Token = tok
	}
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not set (telegram.token in %s or TELEGRAM_TOKEN)", path)
	}

	if cfg.Records.DefaultTTL == 0 {
		cfg.Records.DefaultTTL = 3600
	}
	if cfg.Database.Dir == "" {
		cfg.Database.Dir = "data"
	}
	if cfg.Probe.TimeoutSeconds == 0 {
		cfg.Probe.TimeoutSeconds = 5
	}

	return &cfg, nil
}
