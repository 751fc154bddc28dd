package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the client configuration
type Config struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		TimeoutMS int    `yaml:"timeout_ms"`
	} `yaml:"api"`

	Polling struct {
		IntervalMS int `yaml:"interval_ms"`
	} `yaml:"polling"`

	Surface struct {
		Height      int     `yaml:"height"`
		ZoomMin     float64 `yaml:"zoom_min"`
		ZoomMax     float64 `yaml:"zoom_max"`
		ZoomStep    float64 `yaml:"zoom_step"`
		ZoomDefault float64 `yaml:"zoom_default"`
	} `yaml:"surface"`

	History struct {
		Database string `yaml:"database"`
	} `yaml:"history"`

	Palette []PaletteEntry `yaml:"palette"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// PaletteEntry is one configurable speaker color.
type PaletteEntry struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
	Fill string `yaml:"fill"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.TimeoutMS = 30000
	cfg.Polling.IntervalMS = 3000
	cfg.Surface.Height = 160
	cfg.Surface.ZoomMin = 10
	cfg.Surface.ZoomMax = 300
	cfg.Surface.ZoomStep = 10
	cfg.Surface.ZoomDefault = 50
	cfg.History.Database = "diamond.db"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads configuration from a YAML file, filling unset fields with
// defaults. An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url must not be empty")
	}
	if c.Polling.IntervalMS <= 0 {
		return fmt.Errorf("config: polling.interval_ms must be positive, got %d", c.Polling.IntervalMS)
	}
	if c.Surface.ZoomMin <= 0 || c.Surface.ZoomMax < c.Surface.ZoomMin {
		return fmt.Errorf("config: invalid zoom bounds [%g, %g]", c.Surface.ZoomMin, c.Surface.ZoomMax)
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMS) * time.Millisecond
}

// APITimeout returns the HTTP client timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutMS) * time.Millisecond
}
