// Package config provides configuration management for shopforge using
// Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with a SHOPFORGE_ prefix. It manages the editor/preview server
// settings, theme catalog location, persistence storage path, and preview
// synchronization tuning.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Themes  ThemesConfig  `yaml:"themes"`
	Preview PreviewConfig `yaml:"preview"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ThemesConfig struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
	Watch   bool   `yaml:"watch"`
}

type PreviewConfig struct {
	// ReadyTimeout bounds how long the server waits for the renderer's
	// ready signal before reporting a persistent loading state.
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	// Debounce groups rapid theme-asset changes into one republish.
	Debounce time.Duration `yaml:"debounce"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration from viper's merged sources and applies
// defaults for anything unset.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = ".shopforge/shops.db"
	}
	if c.Themes.Dir == "" {
		c.Themes.Dir = "./themes"
	}
	if c.Themes.Default == "" {
		c.Themes.Default = "modern"
	}
	if c.Preview.ReadyTimeout == 0 {
		c.Preview.ReadyTimeout = 10 * time.Second
	}
	if c.Preview.Debounce == 0 {
		c.Preview.Debounce = 300 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("unknown environment %q", c.Server.Environment)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Themes.Default == "" {
		return fmt.Errorf("default theme is required")
	}
	if c.Preview.ReadyTimeout < 0 || c.Preview.Debounce < 0 {
		return fmt.Errorf("preview durations must be positive")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// IsProduction reports whether the server runs with production hardening
// such as strict websocket origin checks.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
