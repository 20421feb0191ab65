package assets

import (
	"strings"
	"sync"

	"github.com/wolfeidau/clientpack/internal/pipeline"
	"github.com/wolfeidau/clientpack/internal/shell"
)

type BuildMetadata struct {
	Inputs  map[string]InputInfo  `json:"inputs"`
	Outputs map[string]OutputInfo `json:"outputs"`
}

type InputInfo struct {
	Bytes   int          `json:"bytes"`
	Imports []ImportInfo `json:"imports"`
}

type OutputInfo struct {
	EntryPoint string                    `json:"entryPoint"`
	Imports    []ImportInfo              `json:"imports"`
	Inputs     map[string]InputByteCount `json:"inputs"`
	CSSBundle  string                    `json:"cssBundle"`
}

type InputByteCount struct {
	BytesInOutput int `json:"bytesInOutput"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
	Original string `json:"original"`
}

// namespaced reports whether a metafile path belongs to a plugin namespace
// rather than the filesystem.
func namespaced(path string) bool {
	ns, _, ok := strings.Cut(path, ":")
	return ok && ns != "" && !strings.ContainsAny(ns, `/\.`) && len(ns) > 1
}

// Output is one emitted artifact.
type Output struct {
	Chunk string
	Path  string
	URL   string
	Hash  string
}

// Result summarizes a build.
type Result struct {
	Chunks  map[string]shell.Chunk
	Outputs []Output
	Shells  []string
	// Vendor lists the module specifiers merged into the vendor bundle
	Vendor []string
	// Unused lists source files no entry reached, relative to the auditor root
	Unused []string
}

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config   Config
	pipeline pipeline.Config
	metadata *BuildMetadata
	result   *Result
	shells   *shell.Emitter
	mu       sync.RWMutex
}

// New creates a new asset pipeline with the given configuration
func New(config Config) *Pipeline {
	cfg := pipeline.Build(config.Layout, config.Options())
	return &Pipeline{
		config:   config,
		pipeline: cfg,
		shells:   shell.New(cfg.Output.Directory, nil),
	}
}

// Configuration returns the resolved pipeline configuration.
func (p *Pipeline) Configuration() pipeline.Config {
	return p.pipeline.Clone()
}
