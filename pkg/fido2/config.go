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

package fido2

import "fmt"

// Config configures the registration ceremony service.
type Config struct {
	// RPName is the human-readable name of the Relying Party.
	// Example: "Example Corp"
	RPName string `yaml:"name" json:"name" mapstructure:"name"`

	// Issuer is the relying party's configured identity, used for domain
	// binding when a request carries no documentDomain.
	// Example: "https://example.com"
	Issuer string `yaml:"issuer" json:"issuer" mapstructure:"issuer"`

	// ChallengeSize is the number of random bytes per challenge.
	// Default: 32 (minimum 16, per the 128-bit entropy floor)
	ChallengeSize int `yaml:"challenge_size" json:"challenge_size" mapstructure:"challenge_size"`

	// UserHandleSize is the number of random bytes per user handle.
	// Default: 32 (minimum 32)
	UserHandleSize int `yaml:"user_handle_size" json:"user_handle_size" mapstructure:"user_handle_size"`
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.RPName == "" {
		return fmt.Errorf("RPName is required")
	}
	if c.Issuer == "" {
		return fmt.Errorf("Issuer is required")
	}
	if c.ChallengeSize < 16 {
		return fmt.Errorf("challenge size %d is below the 16 byte minimum", c.ChallengeSize)
	}
	if c.UserHandleSize < 32 {
		return fmt.Errorf("user handle size %d is below the 32 byte minimum", c.UserHandleSize)
	}
	return nil
}

// SetDefaults sets default values for unset configuration fields.
func (c *Config) SetDefaults() {
	if c.ChallengeSize == 0 {
		c.ChallengeSize = DefaultChallengeSize
	}
	if c.UserHandleSize == 0 {
		c.UserHandleSize = DefaultUserHandleSize
	}
}
