package devserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

func TestHandler(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "resources", "frontend_client", "app", "dist")
	require.NoError(t, os.MkdirAll(outDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "app-main.hot.bundle.js"), []byte("console.log(1)"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "frontend"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "frontend", "robots.txt"), []byte("ok"), 0o600))

	cfg := pipeline.Build(pipeline.DefaultLayout(root), pipeline.Options{Mode: pipeline.ModeHot})

	pages := map[string]http.Handler{
		"/index.html": http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		}),
	}
	h := Handler(*cfg.DevServer, root, outDir, cfg.Output.PublicPath, pages)

	t.Run("serves bundles under the public path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/dist/app-main.hot.bundle.js?abc", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "console.log(1)", rec.Body.String())
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("serves pages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
		require.Equal(t, "<html></html>", rec.Body.String())
	})

	t.Run("serves the content base", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", rec.Body.String())
	})

	t.Run("answers preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/app/dist/app-main.hot.bundle.js", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestURLPath(t *testing.T) {
	require.Equal(t, "/app/dist/", urlPath("http://localhost:8080/app/dist/"))
	require.Equal(t, "/", urlPath("http://localhost:8080"))
	require.Equal(t, "app/dist/", urlPath("app/dist/"))
}
