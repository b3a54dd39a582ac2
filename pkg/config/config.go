package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name. Nested sections
// add their own field name, so Viewport.Width reads WREN_VIEWPORT_WIDTH.
// envconfig also falls back to the bare tag name, so tags avoid names like
// HOME that are always present in the environment.
const Prefix = "WREN"

// Config holds all browser configuration.
type Config struct {
	Viewport ViewportConfig
	Network  NetworkConfig
	Images   ImageConfig
	Logging  LogConfig
}

// ViewportConfig holds display surface dimensions.
type ViewportConfig struct {
	Width  int    `envconfig:"WIDTH" default:"1024"`
	Height int    `envconfig:"HEIGHT" default:"700"`
	Home   string `envconfig:"HOME_URL" default:"browser://home"`
}

// NetworkConfig holds HTTP client configuration.
type NetworkConfig struct {
	UserAgent    string        `envconfig:"USER_AGENT" default:"wren/1.0"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"30s"`
	RetryMax     int           `envconfig:"RETRY_MAX" default:"2"`
	RetryWaitMin time.Duration `envconfig:"RETRY_WAIT_MIN" default:"500ms"`
	RetryWaitMax time.Duration `envconfig:"RETRY_WAIT_MAX" default:"5s"`
	MaxRedirects int           `envconfig:"MAX_REDIRECTS" default:"10"`
	DownloadDir  string        `envconfig:"DOWNLOAD_DIR" default:""`
}

// ImageConfig holds asynchronous resource loading limits.
type ImageConfig struct {
	RequestsPerSecond float64 `envconfig:"RPS" default:"8"`
	Burst             int     `envconfig:"BURST" default:"4"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// Load loads configuration from WREN_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:  1024,
			Height: 700,
			Home:   "browser://home",
		},
		Network: NetworkConfig{
			UserAgent:    "wren/1.0",
			Timeout:      30 * time.Second,
			RetryMax:     2,
			RetryWaitMin: 500 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
			MaxRedirects: 10,
		},
		Images: ImageConfig{
			RequestsPerSecond: 8,
			Burst:             4,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
