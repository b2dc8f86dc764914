// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by postpos binaries.
const EnvPrefix = "POSTPOS_"

// ParseEnv loads configuration from prefixed environment variables.
//
// Struct tags name the unprefixed key: `env:"DB_PATH"` reads POSTPOS_DB_PATH.
func ParseEnv(target any) error {
	return parse(target, env.Options{Prefix: EnvPrefix})
}

// ParseEnvFrom loads configuration from an explicit variable set instead of
// the process environment.
func ParseEnvFrom(target any, environment map[string]string) error {
	return parse(target, env.Options{Prefix: EnvPrefix, Environment: environment})
}

func parse(target any, opts env.Options) error {
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
