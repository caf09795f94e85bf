package config

import (
	"github.com/dmitrijs2005/jara/internal/flagx"
	"github.com/dmitrijs2005/jara/internal/timex"
)

type fileConfig struct {
	Addr            *string         `json:"addr" toml:"addr"`
	StaticDir       *string         `json:"static_dir" toml:"static_dir"`
	LogLevel        *string         `json:"log_level" toml:"log_level"`
	LogFormat       *string         `json:"log_format" toml:"log_format"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout" toml:"shutdown_timeout"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
// Errors panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	var fc fileConfig
	if err := flagx.LoadFile(path, &fc); err != nil {
		panic(err)
	}

	if fc.Addr != nil {
		cfg.Addr = *fc.Addr
	}
	if fc.StaticDir != nil {
		cfg.StaticDir = *fc.StaticDir
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
}
