// Package server wires configuration, logging and the SPA router into a
// runnable static-file host with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/jara/internal/filex"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/dmitrijs2005/jara/internal/server/config"
	"github.com/dmitrijs2005/jara/internal/server/web"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *web.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)

	if !filex.IsDir(c.StaticDir) {
		return nil, fmt.Errorf("static dir %q: not a directory", c.StaticDir)
	}

	router := web.NewRouter(c.StaticDir, logger)
	srv := web.NewServer(c.Addr, router, c.ShutdownTimeout, logger)

	return &App{config: c, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigs
		app.logger.Info(context.Background(), "Received signal, shutting down gracefully", "signal", sig.String())
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "static_dir", app.config.StaticDir)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	return nil
}
