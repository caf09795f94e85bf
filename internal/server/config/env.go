package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type portEnv struct {
	Port string `env:"PORT"`
}

// parseEnv overlays cfg with environment variables. A bare PORT, as set by
// most hosting platforms, binds all interfaces; JARA_SERVER_ADDR wins over it.
func parseEnv(cfg *Config) {
	var p portEnv
	if err := env.Parse(&p); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
	if p.Port != "" {
		cfg.Addr = ":" + p.Port
	}

	if err := env.Parse(cfg); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
