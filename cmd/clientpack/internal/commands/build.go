package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/clientpack/internal/assets"
	"github.com/wolfeidau/clientpack/internal/logger"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

type BuildCmd struct {
	Mode        string       `help:"build mode (development, hot or production)" default:"development" env:"NODE_ENV"`
	Project     ProjectFlags `embed:""`
	Precompress bool         `help:"write zstd compressed copies of each bundle" default:"false"`
	NoWrite     bool         `help:"keep bundles in memory, only shells marked always-write are written" default:"false"`
	Metafile    string       `help:"metafile name relative to the output directory, empty to skip" default:"meta.json"`

	TelemetryFlags `embed:""`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	stop := c.start(ctx, log, globals.Version)
	defer stop()

	mode := pipeline.ParseMode(c.Mode)
	cfg, err := c.Project.assetsConfig(log, mode)
	if err != nil {
		return fmt.Errorf("failed to configure project: %w", err)
	}
	cfg.Precompress = c.Precompress
	cfg.Write = !c.NoWrite
	cfg.MetafileName = c.Metafile

	log.Info().Str("version", globals.Version).Str("mode", mode.String()).Str("root", cfg.Layout.Root).Msg("Building client")

	p := assets.New(cfg)
	if err := p.Build(ctx); err != nil {
		return err
	}

	result, err := p.Result()
	if err != nil {
		return err
	}

	for _, o := range result.Outputs {
		log.Info().Str("chunk", o.Chunk).Str("url", o.URL).Msg("Emitted bundle")
	}
	for _, s := range result.Shells {
		log.Info().Str("path", s).Msg("Emitted shell")
	}
	if n := len(result.Unused); n > 0 {
		log.Warn().Int("count", n).Strs("files", result.Unused).Msg("Unused source files")
	}
	return nil
}
