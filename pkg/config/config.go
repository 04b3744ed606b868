// Package config loads and saves the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Request RequestConfig `yaml:"request"`
	Store   StoreConfig   `yaml:"store"`
	Player  PlayerConfig  `yaml:"player"`
	Server  ServerConfig  `yaml:"server"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// StoreConfig holds tour store settings. BaseURLTemplate contains a
// {tour_code} placeholder that is substituted per tour.
type StoreConfig struct {
	BaseURLTemplate string   `yaml:"base_url_template"`
	CacheTTL        Duration `yaml:"cache_ttl"`
}

// BaseURL returns the document root for a tour code.
func (s *StoreConfig) BaseURL(tourCode string) string {
	return strings.ReplaceAll(s.BaseURLTemplate, "{tour_code}", tourCode)
}

// PlayerConfig holds playback and synchronization settings.
type PlayerConfig struct {
	SkipSeconds          float64  `yaml:"skip_seconds"`           // transport skip amount
	ScrollOverrideWindow Duration `yaml:"scroll_override_window"` // manual-scroll suppression of auto-scroll
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/laxyguide.db",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Store: StoreConfig{
			BaseURLTemplate: "https://tours.laxy.app/{tour_code}",
			CacheTTL:        Duration(Day),
		},
		Player: PlayerConfig{
			SkipSeconds:          15,
			ScrollOverrideWindow: Duration(5 * time.Second),
		},
		Server: ServerConfig{
			Address: "localhost:1930",
		},
	}
}

// Load loads the configuration from the given path. If the file does not
// exist it is created with defaults; if it exists, file values are merged
// over defaults without writing back (preserves user comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets deployment env vars win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LAXYGUIDE_STORE_BASE_URL"); v != "" {
		cfg.Store.BaseURLTemplate = v
	}
	if v := os.Getenv("LAXYGUIDE_LISTEN_ADDR"); v != "" {
		cfg.Server.Address = v
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# LaxyGuide Configuration
# ----------------------
# Durations accept: ns, us, ms, s, m, h, d (day), w (week)
# store.base_url_template must contain a {tour_code} placeholder.

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
