// Package config handles configuration for the static server, including
// defaults, a JSON or TOML file overlay, environment variables and
// command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/jara/internal/flagx"
)

// Config holds runtime settings for the static server.
//
// Fields:
//   - Addr: listen address. PORT from the environment maps to ":<PORT>".
//   - StaticDir: directory of the built single-page app (must hold index.html).
//   - ShutdownTimeout: how long in-flight requests get on shutdown.
type Config struct {
	Addr            string        `env:"JARA_SERVER_ADDR"`
	StaticDir       string        `env:"JARA_STATIC_DIR"`
	LogLevel        string        `env:"JARA_LOG_LEVEL"`
	LogFormat       string        `env:"JARA_LOG_FORMAT"`
	ShutdownTimeout time.Duration `env:"JARA_SHUTDOWN_TIMEOUT"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.StaticDir = "dist/spa"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags.
func LoadConfig() *Config {
	return load(flagx.Args())
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
