package cli

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/objecturl"
	"github.com/dmitrijs2005/jara/internal/logging"
	"github.com/dmitrijs2005/jara/internal/server/web"
)

// previewServer exposes the object URL registry on a loopback port. It is
// started on first use and lives until Close.
type previewServer struct {
	registry *objecturl.Registry
	logger   logging.Logger

	mu     sync.Mutex
	base   string
	cancel context.CancelFunc
	done   chan struct{}
}

func newPreviewServer(r *objecturl.Registry, logger logging.Logger) *previewServer {
	return &previewServer{registry: r, logger: logger}
}

// URL returns the loopback http URL serving blobURL, starting the server
// if needed.
func (p *previewServer) URL(blobURL string) (string, error) {
	path, ok := p.registry.PathOf(blobURL)
	if !ok {
		return "", errUnknownURL
	}
	base, err := p.start()
	if err != nil {
		return "", err
	}
	return base + path, nil
}

func (p *previewServer) start() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.base != "" {
		return p.base, nil
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := web.NewServer(ln.Addr().String(), p.registry, time.Second, p.logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ctx, ln); err != nil {
			p.logger.Warn(ctx, "preview server stopped", "error", err)
		}
	}()

	p.base = "http://" + ln.Addr().String()
	p.cancel = cancel
	p.done = done
	return p.base, nil
}

// Close stops the server if it was started.
func (p *previewServer) Close() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.base, p.cancel, p.done = "", nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
