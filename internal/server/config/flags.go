package config

import (
	"flag"

	"github.com/dmitrijs2005/jara/internal/flagx"
)

// parseFlags populates Config from command-line flags:
//
//	-a                  listen address
//	-static             SPA directory
//	-log-level          debug | info | warn | error
//	-log-format         text | json
//	-shutdown-timeout   graceful shutdown budget
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "listen address")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "directory of the built SPA")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")

	args = flagx.FilterArgs(args, []string{"-a", "-static", "-log-level", "-log-format", "-shutdown-timeout"})
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
