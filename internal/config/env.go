package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// loadFromEnv overrides configuration with environment variables.
// Fields whose variable is unset keep the value from defaults or the YAML file.
func loadFromEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
