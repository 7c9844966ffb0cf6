// Package config loads application configuration from environment variables,
// optionally layered over a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Environment variables win over
// the YAML file; the YAML file wins over defaults.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development" yaml:"environment"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" yaml:"logLevel"`

	// Storage
	DBPath string `envconfig:"DB_PATH" default:"outreach.db" yaml:"dbPath"`

	// API server
	ListenAddr     string `envconfig:"LISTEN_ADDR" default:":8080" yaml:"listenAddr"`
	AuthMode       string `envconfig:"AUTH_MODE" default:"jwt" yaml:"authMode"` // "jwt" or "none"
	JWTSecret      string `envconfig:"JWT_SECRET" yaml:"jwtSecret"`
	RateLimitRPS   int    `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"rateLimitRPS"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"rateLimitBurst"`
	CORSOrigins    string `envconfig:"CORS_ORIGINS" yaml:"corsOrigins"`

	// Optional YAML overlay; env-only so the file cannot point at itself.
	ConfigFile string `envconfig:"CONFIG_FILE" yaml:"-"`
}

// fileOverlay mirrors Config with pointer fields so the YAML file can set a
// subset of keys without clobbering defaults.
type fileOverlay struct {
	Environment    *string `yaml:"environment"`
	LogLevel       *string `yaml:"logLevel"`
	DBPath         *string `yaml:"dbPath"`
	ListenAddr     *string `yaml:"listenAddr"`
	AuthMode       *string `yaml:"authMode"`
	JWTSecret      *string `yaml:"jwtSecret"`
	RateLimitRPS   *int    `yaml:"rateLimitRPS"`
	RateLimitBurst *int    `yaml:"rateLimitBurst"`
	CORSOrigins    *string `yaml:"corsOrigins"`
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE
// (if any), then environment variables on top.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.ConfigFile != "" {
		if err := applyFile(&cfg, cfg.ConfigFile); err != nil {
			return nil, err
		}
		// Re-apply env so explicit variables beat file values.
		if err := envconfig.Process("", &cfg); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&cfg.Environment, overlay.Environment)
	setString(&cfg.LogLevel, overlay.LogLevel)
	setString(&cfg.DBPath, overlay.DBPath)
	setString(&cfg.ListenAddr, overlay.ListenAddr)
	setString(&cfg.AuthMode, overlay.AuthMode)
	setString(&cfg.JWTSecret, overlay.JWTSecret)
	setString(&cfg.CORSOrigins, overlay.CORSOrigins)
	if overlay.RateLimitRPS != nil {
		cfg.RateLimitRPS = *overlay.RateLimitRPS
	}
	if overlay.RateLimitBurst != nil {
		cfg.RateLimitBurst = *overlay.RateLimitBurst
	}
	return nil
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
		}
	case "none":
		if c.Environment == "production" {
			return fmt.Errorf("AUTH_MODE none is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q, expected jwt or none", c.AuthMode)
	}

	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	return nil
}

// IsDevelopment returns true when running in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
