// Package objecturl issues ephemeral, process-local URLs for in-memory
// binary content, the way a browser issues blob: URLs.
//
// A URL stays resolvable until it is revoked or the process exits. The
// registry is also an http.Handler, so a loopback server can stream the
// content to a player.
package objecturl

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/google/uuid"
)

const scheme = "blob:"

// Registry maps blob: URLs to content.
type Registry struct {
	origin string

	mu    sync.RWMutex
	blobs map[string]models.Blob
}

// NewRegistry returns an empty registry. origin is embedded in every URL
// (blob:<origin>/<uuid>) and is informational only.
func NewRegistry(origin string) *Registry {
	return &Registry{origin: strings.TrimRight(origin, "/"), blobs: make(map[string]models.Blob)}
}

// Create registers b and returns its URL. Each call yields a new URL, even
// for identical content.
func (r *Registry) Create(b models.Blob) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.blobs[id] = b
	r.mu.Unlock()

	return scheme + r.origin + "/" + id
}

// Resolve returns the content behind url.
func (r *Registry) Resolve(url string) (models.Blob, bool) {
	id, ok := r.idOf(url)
	if !ok {
		return models.Blob{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[id]
	return b, ok
}

// Revoke releases url. Unknown or already revoked URLs are ignored.
func (r *Registry) Revoke(url string) {
	id, ok := r.idOf(url)
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.blobs, id)
	r.mu.Unlock()
}

// Len reports how many URLs are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// PathOf returns the HTTP path under which ServeHTTP serves url.
func (r *Registry) PathOf(url string) (string, bool) {
	id, ok := r.idOf(url)
	if !ok {
		return "", false
	}
	return "/" + id, true
}

func (r *Registry) idOf(url string) (string, bool) {
	prefix := scheme + r.origin + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(url, prefix)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ServeHTTP serves GET /<uuid> with the blob's content type, supporting
// range requests. Revoked URLs answer 404.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(req.URL.Path, "/")
	r.mu.RLock()
	b, ok := r.blobs[id]
	r.mu.RUnlock()
	if !ok {
		http.NotFound(w, req)
		return
	}

	if b.Type != "" {
		w.Header().Set("Content-Type", b.Type)
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, req, "", time.Time{}, bytes.NewReader(b.Data))
}
