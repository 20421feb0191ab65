package pipeline

import (
	"maps"
	"slices"

	"github.com/wolfeidau/clientpack/internal/minify"
)

// PluginKind tags each plugin variant.
type PluginKind string

const (
	KindChunkSplitter        PluginKind = "chunk-splitter"
	KindAssetAuditor         PluginKind = "asset-auditor"
	KindStylesheetExtractor  PluginKind = "stylesheet-extractor"
	KindShellEmitter         PluginKind = "shell-emitter"
	KindEnvInliner           PluginKind = "env-inliner"
	KindBannerInjector       PluginKind = "banner-injector"
	KindMinifier             PluginKind = "minifier"
	KindHotModuleReplacement PluginKind = "hot-module-replacement"
	KindNamedModules         PluginKind = "named-modules"
	KindNoEmitOnErrors       PluginKind = "no-emit-on-errors"
)

// Plugin is a cross-cutting pipeline behavior.
type Plugin interface {
	Kind() PluginKind
}

// VendorChunk is the name of the shared dependency bundle.
const VendorChunk = "vendor"

// ChunkSplitter merges every dependency-origin module into one named bundle.
type ChunkSplitter struct {
	Name string `yaml:"name"`
}

func (ChunkSplitter) Kind() PluginKind { return KindChunkSplitter }

// Classify reports whether m belongs in the shared bundle.
func (ChunkSplitter) Classify(m Module) bool {
	return m.Origin == OriginDependency
}

// AssetAuditor reports source files that no entry reaches.
type AssetAuditor struct {
	Root   string   `yaml:"root"`
	Ignore []string `yaml:"ignore"`
}

func (AssetAuditor) Kind() PluginKind { return KindAssetAuditor }

// StylesheetExtractor collects processed stylesheets into a separate artifact.
type StylesheetExtractor struct {
	FilenameTemplate string `yaml:"filename"`
}

func (StylesheetExtractor) Kind() PluginKind { return KindStylesheetExtractor }

// ShellEmitter writes one HTML document referencing Chunks in exactly the
// declared order.
type ShellEmitter struct {
	// Filename is relative to the output directory.
	Filename          string   `yaml:"filename"`
	Template          string   `yaml:"template"`
	Chunks            []string `yaml:"chunks"`
	Inject            string   `yaml:"inject"`
	AlwaysWriteToDisk bool     `yaml:"alwaysWriteToDisk"`
}

func (ShellEmitter) Kind() PluginKind { return KindShellEmitter }

// EnvInliner substitutes each key with its literal value at build time.
type EnvInliner struct {
	Values map[string]string `yaml:"values"`
}

func (EnvInliner) Kind() PluginKind { return KindEnvInliner }

// BannerMap maps a bundle name to the text prepended verbatim to it.
type BannerMap map[string]string

// BannerInjector prepends license text to script bundles.
type BannerInjector struct {
	Banners BannerMap `yaml:"banners"`
}

func (BannerInjector) Kind() PluginKind { return KindBannerInjector }

// Minifier compresses and renames identifiers, except those in Protected.
type Minifier struct {
	Protected minify.ProtectedIdentifierSet `yaml:"protected"`
}

func (Minifier) Kind() PluginKind { return KindMinifier }

type HotModuleReplacement struct{}

func (HotModuleReplacement) Kind() PluginKind { return KindHotModuleReplacement }

type NamedModules struct{}

func (NamedModules) Kind() PluginKind { return KindNamedModules }

// NoEmitOnErrors suppresses bundle emission when compilation fails.
type NoEmitOnErrors struct{}

func (NoEmitOnErrors) Kind() PluginKind { return KindNoEmitOnErrors }

// Plugins is the ordered plugin set of a configuration.
type Plugins []Plugin

// Count returns how many plugins of kind are present.
func (ps Plugins) Count(kind PluginKind) int {
	n := 0
	for _, p := range ps {
		if p.Kind() == kind {
			n++
		}
	}
	return n
}

// Has reports whether a plugin of kind is present.
func (ps Plugins) Has(kind PluginKind) bool {
	return ps.Count(kind) > 0
}

// Without returns the plugins that are not of kind.
func (ps Plugins) Without(kind PluginKind) Plugins {
	return slices.DeleteFunc(ps.clone(), func(p Plugin) bool { return p.Kind() == kind })
}

// FindPlugin returns the first plugin of type T.
func FindPlugin[T Plugin](ps Plugins) (T, bool) {
	for _, p := range ps {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// AllPlugins returns every plugin of type T in order.
func AllPlugins[T Plugin](ps Plugins) []T {
	var out []T
	for _, p := range ps {
		if t, ok := p.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func (ps Plugins) MarshalYAML() (any, error) {
	out := make([]map[string]any, len(ps))
	for i, p := range ps {
		out[i] = map[string]any{string(p.Kind()): p}
	}
	return out, nil
}

func (ps Plugins) clone() Plugins {
	out := make(Plugins, len(ps))
	for i, p := range ps {
		out[i] = clonePlugin(p)
	}
	return out
}

func clonePlugin(p Plugin) Plugin {
	switch v := p.(type) {
	case AssetAuditor:
		v.Ignore = slices.Clone(v.Ignore)
		return v
	case ShellEmitter:
		v.Chunks = slices.Clone(v.Chunks)
		return v
	case EnvInliner:
		v.Values = maps.Clone(v.Values)
		return v
	case BannerInjector:
		v.Banners = maps.Clone(v.Banners)
		return v
	default:
		return p
	}
}
