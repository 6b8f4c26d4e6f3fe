// Package config resolves the environment-sensitive backend configuration.
// The active environment is selected by HEALTH_ENV (development or
// production); production requires an HTTPS base URL. The dispatcher only
// consumes the Provider interface and never validates the URL itself.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names accepted in HEALTH_ENV. Develop and trial map onto the
// development section, matching how the host platform labels test builds.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// APIConfig is the resolved backend endpoint configuration.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"-"`

	TimeoutMs int `yaml:"timeout_ms"`
}

// Config holds the per-environment API sections.
type Config struct {
	Environment string    `yaml:"environment"`
	Development APIConfig `yaml:"development"`
	Production  APIConfig `yaml:"production"`
}

// Provider hands the dispatcher the active backend configuration. A nil
// config or resolution error short-circuits the request before any network
// attempt.
type Provider interface {
	APIConfig() (*APIConfig, error)
}

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Environment: EnvProduction,
		Development: APIConfig{
			BaseURL:   "http://127.0.0.1:8000/api/v1",
			TimeoutMs: 10000,
		},
		Production: APIConfig{
			BaseURL:   "https://api.health-tracker.example.com/api/v1",
			TimeoutMs: 15000,
		},
	}
}

// Load reads a YAML config file, expanding ${VAR} references from the
// environment. A .env file is loaded first if present. An empty path yields
// the built-in defaults.
func Load(path string) (*Config, error) {
	// Try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if env := getEnv("HEALTH_ENV", ""); env != "" {
		cfg.Environment = env
	}
	cfg.Development.Timeout = time.Duration(cfg.Development.TimeoutMs) * time.Millisecond
	cfg.Production.Timeout = time.Duration(cfg.Production.TimeoutMs) * time.Millisecond

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the active environment is a test build.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Environment) {
	case EnvDevelopment, "develop", "trial":
		return true
	default:
		return false
	}
}

// APIConfig returns the section for the active environment. It implements
// Provider.
func (c *Config) APIConfig() (*APIConfig, error) {
	if c == nil {
		return nil, fmt.Errorf("api configuration not initialised")
	}
	api := c.Production
	if c.IsDevelopment() {
		api = c.Development
	}
	if api.BaseURL == "" {
		return nil, fmt.Errorf("api configuration has empty base URL")
	}
	if api.Timeout <= 0 {
		api.Timeout = time.Duration(api.TimeoutMs) * time.Millisecond
	}
	return &api, nil
}

// Validate enforces the environment constraints: a base URL must be present
// and production must use HTTPS.
func (c *Config) Validate() error {
	api, err := c.APIConfig()
	if err != nil {
		return err
	}
	if !c.IsDevelopment() && !strings.HasPrefix(api.BaseURL, "https://") {
		return fmt.Errorf("production base URL must use https: %s", api.BaseURL)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
