package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"

	storyapi "github.com/inkhouse/storyapi"
)

// hashedAssetPattern matches content-hashed bundle names emitted by the
// front-end build (e.g. app.3f2a1b9c.js, app.3f2a1b9c.css, plus source maps).
var hashedAssetPattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// AssetHandlers serves the reader front-end shell and its static bundles.
// In dev mode files come from disk so a front-end rebuild is picked up
// without restarting the server; otherwise the embedded copy is used.
type AssetHandlers struct {
	Dev    bool
	Logger *slog.Logger

	assets http.Handler
}

func NewAssetHandlers(dev bool, logger *slog.Logger) *AssetHandlers {
	h := &AssetHandlers{Dev: dev, Logger: logger}
	if dev {
		h.assets = http.FileServer(http.Dir("web/static"))
		return h
	}
	sub, err := fs.Sub(storyapi.StaticFS, "web/static")
	if err != nil {
		if logger != nil {
			logger.Error("embedded static assets unavailable, serving from disk", "error", err)
		}
		h.assets = http.FileServer(http.Dir("web/static"))
		return h
	}
	h.assets = http.FileServer(http.FS(sub))
	return h
}

// Index serves the single-page shell for GET / and GET /index.html.
// The shell is never cached so a deploy takes effect on the next load.
func (h *AssetHandlers) Index(w http.ResponseWriter, r *http.Request, _ Match) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.serveFile(w, r, "index.html")
}

// Asset serves GET /assets/* bundles. Content-hashed files are immutable
// and get a year-long cache; anything else is revalidated every time.
func (h *AssetHandlers) Asset(w http.ResponseWriter, r *http.Request, _ Match) {
	if hashedAssetPattern.MatchString(r.URL.Path) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}
	h.assets.ServeHTTP(w, r)
}

func (h *AssetHandlers) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	if h.Dev {
		http.ServeFile(w, r, "web/static/"+name)
		return
	}
	data, err := storyapi.StaticFS.ReadFile("web/static/" + name)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
