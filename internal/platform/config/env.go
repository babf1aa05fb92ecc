// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by backoffice processes.
const EnvPrefix = "BACKOFFICE_"

// ParseEnv loads configuration from environment variables.
//
// Struct tags name the variable without EnvPrefix, so `env:"HTTP_ADDR"` reads
// BACKOFFICE_HTTP_ADDR.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
