package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "CREDKEEPER_"

// parseEnv overlays CREDKEEPER_* variables. Unset variables leave the
// current value in place.
func parseEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("env config: %w", err)
	}
	return nil
}
