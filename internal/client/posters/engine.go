package posters

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/jara/internal/logging"
)

// Engine defaults.
const (
	DefaultPoolMax          = 24
	DefaultHealthyThreshold = 8
)

// Options tune an Engine. Zero values select the defaults.
type Options struct {
	// Max caps each discovery run.
	Max int
	// HealthyThreshold is the cached list size below which a background
	// refresh is started.
	HealthyThreshold int
	// Concurrency is passed to the Discoverer.
	Concurrency int
	// PublicBase is prepended to discovered paths to form pool URLs.
	PublicBase string
	// CancelSuperseded cancels a running background refresh when a newer
	// one starts. Off, both run and the larger result wins.
	CancelSuperseded bool
}

// Engine resolves the poster pool: cache first, discovery second, remote
// seed list last.
type Engine struct {
	discoverer *Discoverer
	cache      *Cache
	opts       Options
	logger     logging.Logger

	// mu serializes the compare-and-save of refresh results.
	mu         sync.Mutex
	cancelPrev context.CancelFunc
	wg         sync.WaitGroup
}

func NewEngine(prober Prober, cache *Cache, opts Options, logger logging.Logger) *Engine {
	if opts.Max <= 0 {
		opts.Max = DefaultPoolMax
	}
	if opts.HealthyThreshold <= 0 {
		opts.HealthyThreshold = DefaultHealthyThreshold
	}
	return &Engine{
		discoverer: NewDiscoverer(prober, opts.Concurrency),
		cache:      cache,
		opts:       opts,
		logger:     logger.With("module", "posters"),
	}
}

// Pool returns a non-empty, deduplicated poster list.
func (e *Engine) Pool(ctx context.Context) []string {
	cached, ok, err := e.cache.Load(ctx)
	if err != nil {
		e.logger.Warn(ctx, "poster cache unavailable", "error", err)
	}
	if ok && len(cached) > 0 {
		if len(cached) < e.opts.HealthyThreshold {
			e.logger.Debug(ctx, "poster cache below healthy size, refreshing", "size", len(cached))
			e.refresh(ctx)
		}
		return cached
	}

	found, err := e.Discover(ctx)
	if err != nil {
		e.logger.Warn(ctx, "poster discovery interrupted", "error", err)
	}
	if len(found) > 0 {
		if err := e.cache.Save(ctx, found); err != nil {
			e.logger.Warn(ctx, "poster cache not saved", "error", err)
		}
		return found
	}

	e.logger.Info(ctx, "no local posters found, using remote seed list")
	return Dedupe(RemoteSeedPosters)
}

// Discover runs one discovery pass and returns pool URLs.
func (e *Engine) Discover(ctx context.Context) ([]string, error) {
	paths, err := e.discoverer.Discover(ctx, e.opts.Max)
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = e.opts.PublicBase + p
	}
	return urls, err
}

// Rediscover runs discovery now and, when anything was found, replaces the
// cached list with the result regardless of its size.
func (e *Engine) Rediscover(ctx context.Context) ([]string, error) {
	found, err := e.Discover(ctx)
	if err != nil {
		return found, err
	}
	found = Dedupe(found)
	if len(found) == 0 {
		return found, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.cache.Save(ctx, found); err != nil {
		return found, err
	}
	return found, nil
}

// Wait blocks until every background refresh has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// refresh rediscovers in the background. The result replaces the cache
// only if it is strictly larger than the cached list at that moment.
func (e *Engine) refresh(parent context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))

	e.mu.Lock()
	if e.opts.CancelSuperseded && e.cancelPrev != nil {
		e.cancelPrev()
	}
	e.cancelPrev = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		found, err := e.Discover(ctx)
		if err != nil {
			e.logger.Debug(ctx, "poster refresh cancelled", "error", err)
			return
		}
		found = Dedupe(found)

		e.mu.Lock()
		defer e.mu.Unlock()

		current, _, err := e.cache.Load(ctx)
		if err != nil {
			e.logger.Warn(ctx, "poster cache unavailable", "error", err)
			return
		}
		if len(found) <= len(current) {
			return
		}
		if err := e.cache.Save(ctx, found); err != nil {
			e.logger.Warn(ctx, "poster cache not saved", "error", err)
			return
		}
		e.logger.Info(ctx, "poster cache refreshed", "size", len(found))
	}()
}
