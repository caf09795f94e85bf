package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/api"
	"github.com/dmitrijs2005/jara/internal/client/config"
	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/client/objecturl"
	"github.com/dmitrijs2005/jara/internal/client/posters"
	"github.com/dmitrijs2005/jara/internal/client/services"
	"github.com/dmitrijs2005/jara/internal/client/session"
	"github.com/dmitrijs2005/jara/internal/client/shuffle"
	"github.com/dmitrijs2005/jara/internal/client/storage"
	"github.com/dmitrijs2005/jara/internal/cryptox"
	"github.com/dmitrijs2005/jara/internal/logging"
)

// previewOrigin is embedded in the blob: URLs of this process.
const previewOrigin = "jara-cli"

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    *storage.Repositories
	session  *session.Context
	auth     services.AuthService
	media    services.MediaService
	registry *objecturl.Registry
	preview  *previewServer
	posters  *posters.Engine
	api      api.Client
	catalog  models.Catalog

	// playing holds the URLs handed out by the last play command.
	playing *models.VideoURLs

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens local storage under c.DataDir and wires every service the
// REPL uses. Storage problems do not fail: the app then runs on memory.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stderr)

	repos := storage.Open(ctx, c.DataDir, c.WatchInterval, logger)

	prober, err := newProber(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	app, err := build(ctx, c, repos, prober, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	return app, nil
}

func newProber(ctx context.Context, c *config.Config) (posters.Prober, error) {
	if c.S3Bucket == "" {
		return posters.NewHTTPProber(&http.Client{}, c.AssetsBaseURL, c.ProbeTimeout), nil
	}
	p, err := posters.NewS3Prober(ctx, posters.S3Options{
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		Prefix:       c.S3Prefix,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 prober: %w", err)
	}
	return p, nil
}

func build(ctx context.Context, c *config.Config, repos *storage.Repositories, prober posters.Prober, logger logging.Logger) (*App, error) {
	hasher, err := cryptox.NewPasswordHasher(c.PasswordHash)
	if err != nil {
		return nil, err
	}

	catalog, err := shuffle.LoadCatalog()
	if err != nil {
		return nil, err
	}

	// a nil *flock.Flock must not become a non-nil Locker
	var locker services.Locker
	if repos.UsersLock != nil {
		locker = repos.UsersLock
	}

	registry := objecturl.NewRegistry(previewOrigin)

	sess := session.New(repos.KV, logger)
	sess.Init(ctx)

	engine := posters.NewEngine(prober, posters.NewCache(repos.KV), posters.Options{
		Max:              c.PosterMax,
		HealthyThreshold: c.HealthyThreshold,
		Concurrency:      c.ProbeConcurrency,
		PublicBase:       c.AssetsBaseURL,
	}, logger)

	apiClient := api.NewHTTPClient(c.APIBaseURL, &http.Client{Timeout: 30 * time.Second}, api.TokenFunc(sess.Token), logger)

	return &App{
		config:   c,
		logger:   logger.With("module", "cli"),
		repos:    repos,
		session:  sess,
		auth:     services.NewAuthService(repos.KV, hasher, locker, logger),
		media:    services.NewMediaService(repos.Videos, registry, logger),
		registry: registry,
		preview:  newPreviewServer(registry, logger),
		posters:  engine,
		api:      apiClient,
		catalog:  catalog,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run starts the session watcher and the REPL, and blocks until the user
// exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer a.Close()
	defer cancel()

	if a.repos.Degraded {
		fmt.Fprintln(a.out, "Local database unavailable: nothing will be saved this session.")
	}

	go func() {
		if err := a.session.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn(ctx, "session watcher stopped", "error", err)
		}
	}()
	go a.announceSessionChanges(ctx)

	printlnFn("Welcome to Jara CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases playing URLs, waits for poster refreshes and closes the
// stores.
func (a *App) Close() {
	a.media.Revoke(a.playing)
	a.playing = nil
	a.preview.Close()
	a.posters.Wait()
	if err := a.repos.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing storage", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	s := "guest"
	if snap.State == session.StateAuthenticated && snap.User != nil {
		s = snap.User.Email
	}
	if a.repos.Degraded {
		s += " memory"
	}
	return fmt.Sprintf("(%s)", s)
}

// announceSessionChanges reports sign-ins and sign-outs made by another
// process sharing the data directory.
func (a *App) announceSessionChanges(ctx context.Context) {
	changes, cancel := a.session.Subscribe()
	defer cancel()

	last := a.session.State()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-changes:
			if !ok {
				return
			}
			if snap.State == last {
				continue
			}
			last = snap.State
			a.logger.Info(ctx, "session changed", "state", snap.State.String())
		}
	}
}
