package web

import (
	"log"
	"net/http"
	"strings"

	"github.com/direct-img/direct-img.link/internal/transport/web/mw"
	"github.com/direct-img/direct-img.link/internal/transport/web/v1/health"
	"github.com/direct-img/direct-img.link/internal/transport/web/v1/image"
)

// Reserved paths go to the static collaborator; everything else is a
// query for the image resolver.
func reserved(path string) bool {
	switch path {
	case "", "index.html", "favicon.ico", "robots.txt":
		return true
	}
	return false
}

func newRouter(ih *image.Handler, hh *health.Handler, static http.Handler, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /healthz", hh.Liveness)
	mux.HandleFunc("GET /readyz", hh.Readiness)

	// catch-all: static for reserved names, resolver for queries
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if reserved(strings.TrimPrefix(r.URL.Path, "/")) {
			static.ServeHTTP(w, r)
			return
		}
		ih.Resolve(w, r)
	})

	return mw.WithRequestID(mw.Logging(logger)(mux))
}
