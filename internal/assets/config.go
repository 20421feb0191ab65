package assets

import (
	"github.com/wolfeidau/clientpack/internal/minify"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

type Config struct {
	// Layout locates the client's source and build trees
	Layout pipeline.Layout
	// Build mode
	Mode pipeline.Mode
	// Protected identifiers handed to the minifier in production
	Protected minify.ProtectedIdentifierSet
	// Hot dev server address
	DevServerHost string
	DevServerPort int
	// Whether to write bundles to disk; shells marked always-write are written regardless
	Write bool
	// Path to metafile (relative to the output directory), empty to skip
	MetafileName string
	// Whether to write zstd compressed copies next to each bundle
	Precompress bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig(root string) Config {
	return Config{
		Layout:       pipeline.DefaultLayout(root),
		Mode:         pipeline.ModeDevelopment,
		Write:        true,
		MetafileName: "meta.json",
	}
}

// Options returns the mode options for this configuration.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Mode:          c.Mode,
		Probe:         pipeline.OSProbe{},
		Protected:     c.Protected,
		DevServerHost: c.DevServerHost,
		DevServerPort: c.DevServerPort,
	}
}
