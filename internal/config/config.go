// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-fido2-server.
//
// go-fido2-server is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jeremyhahn/go-fido2-server/pkg/fido2"
	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	RelyingParty fido2.Config       `yaml:"relying_party"`
	Registration RegistrationConfig `yaml:"registration"`
}

// ServerConfig contains server-level settings. Timeouts are in seconds.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RegistrationConfig controls registration ceremony storage behavior.
type RegistrationConfig struct {
	// PendingTTL expires uncompleted PENDING entries after this many
	// seconds. Zero disables expiry.
	PendingTTL int `yaml:"pending_ttl"`
}

// Load reads the configuration from a YAML file, applies environment
// overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults sets default values for unset configuration fields.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	c.RelyingParty.SetDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if err := c.RelyingParty.Validate(); err != nil {
		return fmt.Errorf("relying_party: %w", err)
	}
	if c.Registration.PendingTTL < 0 {
		return fmt.Errorf("invalid pending_ttl: %d", c.Registration.PendingTTL)
	}
	return nil
}

// applyEnvOverrides lets deployment environments override file settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FIDO2_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("FIDO2_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("FIDO2_RP_NAME"); v != "" {
		c.RelyingParty.RPName = v
	}
	if v := os.Getenv("FIDO2_RP_ISSUER"); v != "" {
		c.RelyingParty.Issuer = v
	}
	if v := os.Getenv("FIDO2_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
