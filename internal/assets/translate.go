package assets

import (
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

var loaderExtensions = []string{".js", ".jsx", ".css", ".eot", ".woff", ".woff2", ".ttf", ".svg", ".png"}

// stepLoaders maps the final step of a primary chain to the engine loader.
var stepLoaders = map[string]api.Loader{
	pipeline.StepTranspile:   api.LoaderJSX,
	pipeline.StepHotReload:   api.LoaderJSX,
	pipeline.StepFile:        api.LoaderFile,
	pipeline.StepCSS:         api.LoaderCSS,
	pipeline.StepExtract:     api.LoaderCSS,
	pipeline.StepStyleInject: api.LoaderCSS,
}

// engineSteps are executed by the engine itself, everything else belongs to
// an external tool.
var engineSteps = map[string]bool{
	pipeline.StepTranspile:   true,
	pipeline.StepFile:        true,
	pipeline.StepCSS:         true,
	pipeline.StepPostCSS:     true,
	pipeline.StepExtract:     true,
	pipeline.StepStyleInject: true,
}

// Loaders derives the per-extension loader map from the rule registry.
func Loaders(reg pipeline.Registry) map[string]api.Loader {
	out := make(map[string]api.Loader)
	for _, ext := range loaderExtensions {
		rule, ok := reg.RuleFor(pipeline.StagePrimary, "module"+ext)
		if !ok || len(rule.Chain) == 0 {
			continue
		}
		if l, ok := stepLoaders[rule.Chain[len(rule.Chain)-1].ID]; ok {
			out[ext] = l
		}
	}
	return out
}

// InjectsStyles reports whether stylesheets are compiled into script modules
// that inject a <style> element. That holds when no extractor is configured
// or when the stylesheet chain ends in the style-inject step.
func InjectsStyles(cfg pipeline.Config) bool {
	if !cfg.Plugins.Has(pipeline.KindStylesheetExtractor) {
		return true
	}
	rule, ok := cfg.Rules.RuleFor(pipeline.StagePrimary, "module.css")
	if !ok || len(rule.Chain) == 0 {
		return false
	}
	return rule.Chain[len(rule.Chain)-1].ID == pipeline.StepStyleInject
}

// ExternalSteps returns the step identifiers the engine does not run.
func ExternalSteps(reg pipeline.Registry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range reg {
		for _, s := range r.Chain {
			if !engineSteps[s.ID] && !seen[s.ID] {
				seen[s.ID] = true
				out = append(out, s.ID)
			}
		}
	}
	return out
}

// OutputName is the extension-less output path of an entry for a filename
// template. The engine appends the extension and the hash never reaches disk.
func OutputName(tmpl, entry string) string {
	name := pipeline.DiskName(tmpl, entry)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Translate maps a pipeline configuration onto the options shared by every
// engine pass.
func Translate(cfg pipeline.Config, workDir string) api.BuildOptions {
	opts := api.BuildOptions{
		AbsWorkingDir:     workDir,
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Format:            api.FormatIIFE,
		Platform:          api.PlatformBrowser,
		JSX:               api.JSXTransform,
		Outdir:            cfg.Output.Directory,
		EntryNames:        "[name]",
		AssetNames:        "[hash]",
		PublicPath:        cfg.Output.PublicPath,
		Loader:            Loaders(cfg.Rules),
		ResolveExtensions: cfg.Extensions,
		Alias:             cfg.Aliases.Map(),
		TreeShaking:       api.TreeShakingTrue,
		LogLevel:          api.LogLevelSilent,
	}

	if env, ok := pipeline.FindPlugin[pipeline.EnvInliner](cfg.Plugins); ok {
		opts.Define = env.Values
	}

	if _, ok := pipeline.FindPlugin[pipeline.Minifier](cfg.Plugins); ok {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
		// keeps runtime .name values, grammar token names depend on them
		opts.KeepNames = true
	}

	switch cfg.SourceMap {
	case pipeline.SourceMapCheap:
		opts.Sourcemap = api.SourceMapLinked
		opts.SourcesContent = api.SourcesContentExclude
	case pipeline.SourceMapFull:
		opts.Sourcemap = api.SourceMapLinked
		opts.SourcesContent = api.SourcesContentInclude
	default:
		opts.Sourcemap = api.SourceMapNone
	}

	if cfg.Output.SourceRootTemplate != "" {
		opts.SourceRoot = filepath.ToSlash(cfg.Output.Directory) + "/"
	}

	for _, id := range ExternalSteps(cfg.Rules) {
		log.Debug().Str("step", id).Msg("Transform step runs outside the engine")
	}

	// the engine names modules by path and emits nothing for a failed pass
	for _, kind := range []pipeline.PluginKind{pipeline.KindNamedModules, pipeline.KindNoEmitOnErrors} {
		if cfg.Plugins.Has(kind) {
			log.Debug().Str("plugin", string(kind)).Msg("Plugin behaviour is native to the engine")
		}
	}

	return opts
}
