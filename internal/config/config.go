// Package config loads console and tool settings from GUARD_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Prefix is the environment variable prefix, e.g. GUARD_GATEWAY_ORIGIN.
const Prefix = "GUARD"

// Config holds the settings shared by guardconsole, guardctl and guard-mcp.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Gateway
	GatewayOrigin string        `envconfig:"GATEWAY_ORIGIN" default:"http://localhost:8000"`
	APIBase       string        `envconfig:"API_BASE" default:"/api"`
	APITimeout    time.Duration `envconfig:"API_TIMEOUT" default:"60s"`

	// Console HTTP server
	HTTPPort int    `envconfig:"HTTP_PORT" default:"5173"`
	BasePath string `envconfig:"BASE_PATH" default:"/"`

	// Health probing of the gateway
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.GatewayOrigin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid GATEWAY_ORIGIN %q: want http(s)://host[:port]", c.GatewayOrigin)
	}
	if !strings.HasPrefix(c.APIBase, "/") {
		return fmt.Errorf("invalid API_BASE %q: must start with '/'", c.APIBase)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("invalid API_TIMEOUT %s: must be > 0", c.APITimeout)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("invalid BASE_PATH %q: must start with '/'", c.BasePath)
	}
	if c.HealthIntervalSeconds <= 0 || c.HealthProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("health interval and probe timeout must be > 0")
	}
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}
	return nil
}

// New creates a new Config by parsing environment variables
// prefixed with GUARD_, e.g. GUARD_GATEWAY_ORIGIN, GUARD_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("environment", string(cfg.Environment)).
		Str("gateway_origin", cfg.GatewayOrigin).
		Str("api_base", cfg.APIBase).
		Dur("api_timeout", cfg.APITimeout).
		Int("port", cfg.HTTPPort).
		Str("base_path", cfg.BasePath).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		GatewayOrigin:             "http://127.0.0.1:8000",
		APIBase:                   "/api",
		APITimeout:                5 * time.Second,
		HTTPPort:                  5173,
		BasePath:                  "/",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		LogLevel:                  "debug",
	}
}
