// Package devserver serves hot-mode bundles according to the dev-server
// descriptor. File watching and live-reload sockets are not handled here.
package devserver

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/cors"
	httpmiddleware "github.com/wolfeidau/clientpack/internal/http"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

// Handler serves outputDir under the configured public path, pages by exact
// path, and everything else from the descriptor's content base.
func Handler(desc pipeline.DevServer, root, outputDir, publicPath string, pages map[string]http.Handler) http.Handler {
	mux := http.NewServeMux()

	prefix := "/" + strings.Trim(urlPath(publicPath), "/") + "/"
	mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(outputDir))))

	for path, h := range pages {
		mux.Handle(path, h)
	}

	if desc.ContentBase != "" {
		mux.Handle("/", http.FileServer(http.Dir(filepath.Join(root, desc.ContentBase))))
	}

	return httpmiddleware.NoStore()(withHeaders(desc.Headers, withCORS(desc.Headers, mux)))
}

// urlPath strips the scheme and host of an absolute public path.
func urlPath(publicPath string) string {
	if _, rest, ok := strings.Cut(publicPath, "://"); ok {
		if i := strings.Index(rest, "/"); i >= 0 {
			return rest[i:]
		}
		return "/"
	}
	return publicPath
}

func withHeaders(headers map[string]string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// withCORS answers preflight requests for the origins the descriptor allows.
func withCORS(headers map[string]string, h http.Handler) http.Handler {
	origin := headers["Access-Control-Allow-Origin"]
	if origin == "" {
		return h
	}

	middleware := cors.New(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return middleware.Handler(h)
}
