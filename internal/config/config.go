// Package config resolves console configuration from an optional YAML
// file plus environment overrides. Resolved once at startup and passed
// down as a value.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultFile            = "sysscope.yml"
	DefaultGatewayURL      = "http://localhost:8000"
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollFailures = 30
)

// Config holds the resolved console configuration.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Poll    PollConfig    `yaml:"poll"`
}

// GatewayConfig locates the diagnostics backend.
type GatewayConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// PollConfig tunes the progress polling loop.
type PollConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxFailures     int `yaml:"max_failures"`
}

// Interval returns the poll interval as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// Load resolves the configuration: defaults, then the YAML file at path
// (skipped silently when absent), then SYSSCOPE_* env overrides.
// An empty path falls back to DefaultFile in the working directory.
func Load(path string) (Config, error) {
	cfg := Config{
		Gateway: GatewayConfig{URL: DefaultGatewayURL},
		Poll: PollConfig{
			IntervalSeconds: int(DefaultPollInterval / time.Second),
			MaxFailures:     DefaultMaxPollFailures,
		},
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine — defaults plus env are enough.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.Gateway.URL == "" {
		return Config{}, fmt.Errorf("gateway URL is empty (set gateway.url in %s or SYSSCOPE_GATEWAY_URL)", path)
	}
	if cfg.Poll.IntervalSeconds <= 0 {
		cfg.Poll.IntervalSeconds = int(DefaultPollInterval / time.Second)
	}
	if cfg.Poll.MaxFailures <= 0 {
		cfg.Poll.MaxFailures = DefaultMaxPollFailures
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SYSSCOPE_GATEWAY_URL"); v != "" {
		cfg.Gateway.URL = v
	}
	if v := os.Getenv("SYSSCOPE_GATEWAY_TOKEN"); v != "" {
		cfg.Gateway.Token = v
	}
	if v := os.Getenv("SYSSCOPE_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Poll.IntervalSeconds = n
		}
	}
	if v := os.Getenv("SYSSCOPE_POLL_MAX_FAILURES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Poll.MaxFailures = n
		}
	}
}
