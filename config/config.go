// Package config holds the single configuration structure built once at
// startup and passed into the session and pipeline components. No other
// package reads the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingSetting is returned when a required configuration value is absent.
var ErrMissingSetting = errors.New("config: missing required setting")

// Config is the top-level cjpgscan configuration.
type Config struct {
	Portal  PortalConfig  `yaml:"portal"`
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// PortalConfig controls the browser session against the query portal.
type PortalConfig struct {
	// QueryURL is the CJPG search form address. Required.
	QueryURL string `yaml:"query_url"`

	// Headless controls Chrome's headless mode.
	Headless bool `yaml:"headless"`

	// SlowMotion inserts a delay between browser actions.
	SlowMotion time.Duration `yaml:"slow_motion"`

	// SettleDelay is the pause after blurring the judge field, giving the
	// portal's own validation/autocomplete time to run. Default: 2s.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// SubmitTimeout bounds the wait for the query response. Default: 45s.
	SubmitTimeout time.Duration `yaml:"submit_timeout"`

	// SelectorTimeout bounds each individual selector probe. Default: 5s.
	SelectorTimeout time.Duration `yaml:"selector_timeout"`

	// CaptureTimeout bounds the per-item PDF network race. Default: 25s.
	CaptureTimeout time.Duration `yaml:"capture_timeout"`

	// MinFallbackText is the minimum rendered-text length for the fallback
	// path to record a document. Default: 100.
	MinFallbackText int `yaml:"min_fallback_text"`
}

// SearchConfig provides default search criteria for runs that omit them.
type SearchConfig struct {
	DateFrom     string `yaml:"date_from"`
	DateTo       string `yaml:"date_to"`
	Judge        string `yaml:"judge"`
	MaxDocuments int    `yaml:"max_documents"`
}

// StorageConfig locates captured binaries and the decisions database.
type StorageConfig struct {
	RawDir       string `yaml:"raw_dir"`
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no portal
// URL; callers must set QueryURL before Validate passes.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Portal.SettleDelay <= 0 {
		c.Portal.SettleDelay = 2 * time.Second
	}
	if c.Portal.SubmitTimeout <= 0 {
		c.Portal.SubmitTimeout = 45 * time.Second
	}
	if c.Portal.SelectorTimeout <= 0 {
		c.Portal.SelectorTimeout = 5 * time.Second
	}
	if c.Portal.CaptureTimeout <= 0 {
		c.Portal.CaptureTimeout = 25 * time.Second
	}
	if c.Portal.MinFallbackText <= 0 {
		c.Portal.MinFallbackText = 100
	}
	if c.Search.MaxDocuments <= 0 {
		c.Search.MaxDocuments = 30
	}
	if c.Storage.RawDir == "" {
		c.Storage.RawDir = "runs/raw"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "data/decisions.db"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8085"
	}
}

// Validate checks the settings that have no usable default. It runs before
// any browser or database interaction.
func (c *Config) Validate() error {
	if c.Portal.QueryURL == "" {
		return fmt.Errorf("%w: portal.query_url", ErrMissingSetting)
	}
	return nil
}
