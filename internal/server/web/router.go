package web

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/jara/internal/logging"
)

const indexFile = "index.html"

// NewRouter serves files from staticDir. GET and HEAD requests that match no
// file get index.html so client-side routes resolve, except under /api/ and
// /health, which answer with a JSON 404 for every method.
func NewRouter(staticDir string, logger logging.Logger) http.Handler {
	h := &spaHandler{root: staticDir, logger: logger.With("module", "spa")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/*", h.ServeHTTP)
	r.Head("/*", h.ServeHTTP)
	r.MethodNotAllowed(h.methodNotAllowed)
	return r
}

type spaHandler struct {
	root   string
	logger logging.Logger
}

func isAPIPath(p string) bool {
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health")
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)

	if h.serveFile(w, r, filepath.Join(h.root, filepath.FromSlash(clean))) {
		return
	}

	if isAPIPath(r.URL.Path) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "API endpoint not found"})
		return
	}

	if !h.serveFile(w, r, filepath.Join(h.root, indexFile)) {
		h.logger.Error(r.Context(), "index.html is missing", "dir", h.root)
		http.NotFound(w, r)
	}
}

// methodNotAllowed treats any other method under /api/ and /health as an
// unknown endpoint.
func (h *spaHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "API endpoint not found"})
		return
	}
	w.Header().Set("Allow", "GET, HEAD")
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// serveFile writes the regular file at name, or the index.html inside it
// when name is a directory. It reports false when there is nothing to serve.
func (h *spaHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		name = filepath.Join(name, indexFile)
		if info, err = os.Stat(name); err != nil || info.IsDir() {
			return false
		}
	}

	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

func (h *spaHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
