package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/clientpack/internal/logger"
	"github.com/wolfeidau/clientpack/internal/pipeline"
	"gopkg.in/yaml.v3"
)

type ConfigCmd struct {
	Mode    string       `help:"build mode (development, hot or production)" default:"development" env:"NODE_ENV"`
	Project ProjectFlags `embed:""`

	out io.Writer
}

func (c *ConfigCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	cfg, err := c.Project.assetsConfig(log, pipeline.ParseMode(c.Mode))
	if err != nil {
		return fmt.Errorf("failed to configure project: %w", err)
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(pipeline.Build(cfg.Layout, cfg.Options())); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}
