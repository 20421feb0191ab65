package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/wolfeidau/clientpack/internal/assets"
	"github.com/wolfeidau/clientpack/internal/devserver"
	"github.com/wolfeidau/clientpack/internal/logger"
	"github.com/wolfeidau/clientpack/internal/pipeline"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ServeCmd struct {
	Host    string       `help:"dev server host" default:"localhost" env:"CLIENTPACK_HOST"`
	Port    int          `help:"dev server port" default:"8080" env:"CLIENTPACK_PORT"`
	Project ProjectFlags `embed:""`

	TelemetryFlags `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	stopTelemetry := c.start(ctx, log, globals.Version)
	defer stopTelemetry()

	cfg, err := c.Project.assetsConfig(log, pipeline.ModeHot)
	if err != nil {
		return fmt.Errorf("failed to configure project: %w", err)
	}
	cfg.DevServerHost = c.Host
	cfg.DevServerPort = c.Port

	p := assets.New(cfg)
	if err := p.Build(ctx); err != nil {
		return err
	}

	conf := p.Configuration()
	pages := map[string]http.Handler{}
	for _, s := range pipeline.AllPlugins[pipeline.ShellEmitter](conf.Plugins) {
		h, err := p.Handler(s.Filename)
		if err != nil {
			return err
		}
		pages["/"+path.Base(s.Filename)] = h
	}

	handler := devserver.Handler(*conf.DevServer, cfg.Layout.Root, conf.Output.Directory, conf.Output.PublicPath, pages)
	if c.Telemetry {
		handler = otelhttp.NewHandler(handler, "devserver")
	}

	addr := net.JoinHostPort(conf.DevServer.Host, strconv.Itoa(conf.DevServer.Port))
	server := configureHTTPServer(addr, logger.NewRequests(log).Wrap(handler))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown dev server")
		}
	}()

	log.Info().Str("version", globals.Version).Str("listen", addr).Msg("Serving hot bundles")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
