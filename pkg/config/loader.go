package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from the process environment using `env` struct tags.
//
//	type Config struct {
//	    HTTPPort int    `env:"HTTP_PORT" envDefault:"8000"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
