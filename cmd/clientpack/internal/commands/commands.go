package commands

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/clientpack/internal/assets"
	"github.com/wolfeidau/clientpack/internal/minify"
	"github.com/wolfeidau/clientpack/internal/pipeline"
	"github.com/wolfeidau/clientpack/internal/telemetry"
)

type Globals struct {
	Debug   bool
	Version string
}

// ProjectFlags locate the client project and its minifier inputs.
type ProjectFlags struct {
	Root         string `help:"project root directory" default:"." type:"existingdir"`
	Tokens       string `help:"YAML list of identifiers the minifier must not rename" default:"" env:"CLIENTPACK_TOKENS"`
	DisableCache bool   `help:"disable the transpile cache" default:"false" env:"CLIENTPACK_DISABLE_CACHE"`
}

func (f ProjectFlags) layout(log zerolog.Logger) (pipeline.Layout, error) {
	root, err := filepath.Abs(f.Root)
	if err != nil {
		return pipeline.Layout{}, err
	}

	layout := pipeline.DefaultLayout(root)
	if f.DisableCache {
		layout.TranspileCache = ""
	}
	if _, err := os.Stat(layout.Template); err != nil {
		log.Debug().Str("template", layout.Template).Msg("Shell template not found, using built-in template")
		layout.Template = ""
	}
	return layout, nil
}

func (f ProjectFlags) protected() (minify.ProtectedIdentifierSet, error) {
	if f.Tokens == "" {
		return minify.ProtectedIdentifierSet{}, nil
	}
	return minify.Load(minify.FileSource{Path: f.Tokens})
}

func (f ProjectFlags) assetsConfig(log zerolog.Logger, mode pipeline.Mode) (assets.Config, error) {
	layout, err := f.layout(log)
	if err != nil {
		return assets.Config{}, err
	}

	protected, err := f.protected()
	if err != nil {
		return assets.Config{}, err
	}

	cfg := assets.DefaultConfig(layout.Root)
	cfg.Layout = layout
	cfg.Mode = mode
	cfg.Protected = protected
	return cfg, nil
}

// TelemetryFlags enable OTLP export of build traces and metrics.
type TelemetryFlags struct {
	Telemetry bool `help:"export traces and metrics over OTLP" default:"false" env:"CLIENTPACK_TELEMETRY"`
}

// start installs the OTLP providers when enabled. The returned stop func is
// always safe to call.
func (f TelemetryFlags) start(ctx context.Context, log zerolog.Logger, version string) func() {
	if !f.Telemetry {
		return func() {}
	}

	log.Info().Msg("Telemetry is enabled")
	shutdown, err := telemetry.Init(ctx, version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
