// ABOUTME: Configuration loader for the inventory admin client
// ABOUTME: Reads an optional .env and config.yaml, then environment variables

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// AppName names the XDG config directory
const AppName = "inventory-admin"

// Config holds client settings. Environment variables win over config.yaml.
type Config struct {
	APIURL         string        `yaml:"api_url" env:"INVENTORY_API_URL" env-default:"http://localhost:8080"`
	ConfigDir      string        `yaml:"-" env:"INVENTORY_CONFIG_DIR"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"INVENTORY_IDLE_TIMEOUT" env-default:"10m"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"INVENTORY_REQUEST_TIMEOUT" env-default:"30s"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat      string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	OTLPEndpoint   string        `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// DefaultConfigDir returns the config directory following the XDG convention
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// Load builds the configuration. envFile is loaded first when it exists
// (variables already set in the environment are kept), then config.yaml in
// the config directory, then the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	dir := os.Getenv("INVENTORY_CONFIG_DIR")
	if dir == "" {
		dir = DefaultConfigDir()
	}

	file := filepath.Join(dir, "config.yaml")
	if dir != "" && fileExists(file) {
		if err := cleanenv.ReadConfig(file, &cfg); err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = dir
	}
	cfg.APIURL = strings.TrimRight(ensureScheme(cfg.APIURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the client cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("INVENTORY_API_URL is not a valid URL: %q", c.APIURL)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("INVENTORY_IDLE_TIMEOUT must be positive, got %s", c.IdleTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("INVENTORY_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// ensureScheme prepends https:// when the URL has no scheme
func ensureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
