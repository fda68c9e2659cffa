package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/authkeeper/authkeeper/internal/flagx"
)

const envPrefix = "AUTHKEEPER_"

// parseEnv loads the optional -env-file into the process environment, then
// overlays AUTHKEEPER_* variables. Variables already set in the environment
// win over the file. Unset variables leave the field untouched.
func parseEnv(cfg *Config) error {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
