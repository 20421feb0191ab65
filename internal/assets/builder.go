package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientpack/internal/audit"
	"github.com/wolfeidau/clientpack/internal/minify"
	"github.com/wolfeidau/clientpack/internal/pipeline"
	"github.com/wolfeidau/clientpack/internal/shell"
	"github.com/wolfeidau/clientpack/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/wolfeidau/clientpack/internal/assets")

type emitted struct {
	chunk string
	file  api.OutputFile
}

// Build runs esbuild with the configured pipeline and loads metadata
func (p *Pipeline) Build(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	mode := p.pipeline.Mode.String()
	ctx, span := tracer.Start(ctx, "assets.Build", trace.WithAttributes(attribute.String("mode", mode)))
	defer span.End()

	metrics := telemetry.GetMetrics()
	started := time.Now()

	err := p.build(ctx)

	metrics.BuildsTotal.Add(ctx, 1, telemetry.Mode(mode))
	metrics.BuildDuration.Record(ctx, float64(time.Since(started).Milliseconds()), telemetry.Mode(mode))
	if err != nil {
		metrics.BuildErrorsTotal.Add(ctx, 1, telemetry.Mode(mode))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.UnusedSourceFiles.Record(ctx, int64(len(p.result.Unused)), telemetry.Mode(mode))
	return nil
}

func (p *Pipeline) build(ctx context.Context) error {
	cfg := p.pipeline
	base := Translate(cfg, p.config.Layout.Root)
	if InjectsStyles(cfg) {
		base.Plugins = append(base.Plugins, styleInjectPlugin(base))
	}

	log.Info().
		Str("mode", cfg.Mode.String()).
		Str("outdir", cfg.Output.Directory).
		Int("entrypoints", len(cfg.Entries)).
		Msg("Building assets")

	scanOpts := base
	scanOpts.EntryPointsAdvanced = entryPoints(cfg, cfg.Entries...)
	scan := api.Build(scanOpts)
	if err := checkErrors("scan", scan); err != nil {
		return err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(scan.Metafile), &metadata); err != nil {
		return err
	}

	result := &Result{Chunks: make(map[string]shell.Chunk)}
	var files []emitted

	var vendor []string
	if splitter, ok := pipeline.FindPlugin[pipeline.ChunkSplitter](cfg.Plugins); ok {
		vendor = VendorSpecifiers(&metadata, splitter)
		if len(vendor) > 0 {
			out, err := p.buildVendor(ctx, base, splitter.Name, vendor)
			if err != nil {
				return err
			}
			files = append(files, out...)
		}
	}
	result.Vendor = vendor

	banners := pipeline.BannerMap{}
	if b, ok := pipeline.FindPlugin[pipeline.BannerInjector](cfg.Plugins); ok {
		banners = b.Banners
	}

	for _, entry := range cfg.Entries {
		opts := base
		opts.EntryPointsAdvanced = entryPoints(cfg, entry)
		opts.Plugins = append(slices.Clone(base.Plugins), vendorShimPlugin(vendor))
		if text, ok := banners[entry.Name]; ok && !entry.StylesheetOnly {
			opts.Banner = map[string]string{"js": strings.TrimSuffix(text, "\n")}
		}

		out, err := p.runPass(ctx, entry.Name, opts)
		if err != nil {
			return err
		}
		files = append(files, out...)
	}

	for _, f := range files {
		p.record(result, f)
	}

	if p.config.Write {
		if err := p.write(files, scan.Metafile); err != nil {
			return err
		}
	}

	for _, spec := range pipeline.AllPlugins[pipeline.ShellEmitter](cfg.Plugins) {
		path, _, err := p.shells.Emit(spec, result.Chunks, p.config.Write)
		if err != nil {
			return err
		}
		result.Shells = append(result.Shells, path)
	}

	if auditor, ok := pipeline.FindPlugin[pipeline.AssetAuditor](cfg.Plugins); ok {
		unused, err := auditSources(auditor, &metadata, p.config.Layout.Root)
		if err != nil {
			return err
		}
		result.Unused = unused
	}

	p.metadata = &metadata
	p.result = result
	return nil
}

func (p *Pipeline) buildVendor(ctx context.Context, base api.BuildOptions, name string, specifiers []string) ([]emitted, error) {
	log.Info().Strs("modules", specifiers).Msg("Building vendor bundle")

	opts := base
	opts.Stdin = &api.StdinOptions{
		Contents:   vendorSource(specifiers),
		ResolveDir: p.pipeline.Context,
		Sourcefile: name + ".js",
		Loader:     api.LoaderJS,
	}
	opts.Outdir = ""
	opts.EntryNames = ""
	opts.Outfile = filepath.Join(p.pipeline.Output.Directory, pipeline.DiskName(p.pipeline.Output.FilenameTemplate, name))

	return p.runPass(ctx, name, opts)
}

// runPass executes one engine pass and records what it emitted.
func (p *Pipeline) runPass(ctx context.Context, chunk string, opts api.BuildOptions) ([]emitted, error) {
	_, span := tracer.Start(ctx, "assets.Pass", trace.WithAttributes(attribute.String("chunk", chunk)))
	defer span.End()

	started := time.Now()
	result, err := p.minifiedPass(chunk, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var size int64
	out := make([]emitted, 0, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		log.Debug().Str("chunk", chunk).Str("file", f.Path).Msg("Built file")
		out = append(out, emitted{chunk: chunk, file: f})
		size += int64(len(f.Contents))
	}

	telemetry.GetMetrics().RecordPass(ctx, p.pipeline.Mode.String(), chunk, len(out), size, float64(time.Since(started).Milliseconds()))
	return out, nil
}

func (p *Pipeline) record(result *Result, f emitted) {
	cfg := p.pipeline
	hash := contentHash(f.file.Contents)
	rel, err := filepath.Rel(cfg.Output.Directory, f.file.Path)
	if err != nil {
		rel = filepath.Base(f.file.Path)
	}
	rel = filepath.ToSlash(rel)

	var url string
	switch rel {
	case pipeline.DiskName(cfg.Output.FilenameTemplate, f.chunk):
		url = cfg.Output.ScriptURL(f.chunk, hash)
	case pipeline.DiskName(cfg.Output.StylesheetTemplate, f.chunk):
		url = cfg.Output.StylesheetURL(f.chunk, hash)
	default:
		url = cfg.Output.PublicPath + rel + "?" + hash
	}

	result.Outputs = append(result.Outputs, Output{Chunk: f.chunk, Path: f.file.Path, URL: url, Hash: hash})

	c := result.Chunks[f.chunk]
	switch filepath.Ext(rel) {
	case ".js":
		c.Scripts = append(c.Scripts, url)
	case ".css":
		c.Styles = append(c.Styles, url)
	default:
		return
	}
	result.Chunks[f.chunk] = c
}

func (p *Pipeline) write(files []emitted, metafile string) error {
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.file.Path), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(f.file.Path, f.file.Contents, 0o600); err != nil {
			return err
		}
		if p.config.Precompress && filepath.Ext(f.file.Path) != ".map" {
			if err := writeCompressed(f.file.Path, f.file.Contents); err != nil {
				return err
			}
		}
		log.Info().Str("file", f.file.Path).Msg("Wrote file")
	}

	if p.config.MetafileName == "" {
		return nil
	}

	// Write metafile
	return os.WriteFile(filepath.Join(p.pipeline.Output.Directory, p.config.MetafileName), []byte(metafile), 0o600)
}

// LoadScripts returns the ordered list of script URLs needed for the given
// entry, following the shell chunk order
func (p *Pipeline) LoadScripts(entry string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.result == nil {
		return nil, ErrNotBuilt
	}

	var scripts []string
	for _, name := range pipeline.ShellChunks(entry) {
		scripts = append(scripts, p.result.Chunks[name].Scripts...)
	}
	return scripts, nil
}

// Result returns the outcome of the last build.
func (p *Pipeline) Result() (Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.result == nil {
		return Result{}, ErrNotBuilt
	}
	return *p.result, nil
}

// Handler returns an http.HandlerFunc that renders the named shell with the
// chunks of the last build
func (p *Pipeline) Handler(shellFilename string) (http.HandlerFunc, error) {
	var spec pipeline.ShellEmitter
	found := false
	for _, s := range pipeline.AllPlugins[pipeline.ShellEmitter](p.pipeline.Plugins) {
		if s.Filename == shellFilename {
			spec, found = s, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrShellNotFound, shellFilename)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		result := p.result
		p.mu.RUnlock()

		if result == nil {
			log.Error().Err(ErrNotBuilt).Msg("Failed to load scripts")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := p.shells.Render(w, spec, result.Chunks); err != nil {
			log.Error().Err(err).Msg("Failed to render template")
		}
	}, nil
}

func entryPoints(cfg pipeline.Config, entries ...pipeline.EntryDescriptor) []api.EntryPoint {
	out := make([]api.EntryPoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.EntryPoint{
			InputPath:  filepath.Join(cfg.Context, e.SourcePath),
			OutputPath: OutputName(cfg.Output.FilenameTemplate, e.Name),
		})
	}
	return out
}

func checkErrors(pass string, result api.BuildResult) error {
	if len(result.Errors) == 0 {
		for _, msg := range result.Warnings {
			log.Warn().Str("pass", pass).Str("warning", msg.Text).Msg("Build warning")
		}
		return nil
	}

	for _, msg := range result.Errors {
		ev := log.Error().Str("pass", pass).Str("error", msg.Text)
		if msg.Location != nil {
			ev = ev.Str("file", msg.Location.File).Int("line", msg.Location.Line)
		}
		ev.Msg("Build error")
	}
	return fmt.Errorf("%w: %s: %d errors", ErrBuildFailed, pass, len(result.Errors))
}

// minifiedPass runs the engine once. When the minifier holds protected
// identifiers and renaming lost any of them, the pass is repeated with
// identifier renaming off; whitespace and syntax minification stay on.
func (p *Pipeline) minifiedPass(chunk string, opts api.BuildOptions) (api.BuildResult, error) {
	result := api.Build(opts)
	if err := checkErrors(chunk, result); err != nil {
		return result, err
	}

	m, ok := pipeline.FindPlugin[pipeline.Minifier](p.pipeline.Plugins)
	if !ok || m.Protected.Len() == 0 {
		return result, nil
	}

	err := verifyProtected(result, m.Protected, opts.AbsWorkingDir)
	if errors.Is(err, minify.ErrProtectedIdentifierRenamed) && opts.MinifyIdentifiers {
		log.Warn().Err(err).Str("chunk", chunk).Msg("Rebuilding without identifier renaming")

		opts.MinifyIdentifiers = false
		result = api.Build(opts)
		if err := checkErrors(chunk, result); err != nil {
			return result, err
		}
		err = verifyProtected(result, m.Protected, opts.AbsWorkingDir)
	}
	return result, err
}

// verifyProtected checks each emitted script against the sources that
// contributed bytes to it.
func verifyProtected(result api.BuildResult, protected minify.ProtectedIdentifierSet, workDir string) error {
	var meta BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return err
	}

	sources := make(map[string][]byte)
	for path := range meta.Inputs {
		if namespaced(path) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(workDir, path))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		sources[path] = data
	}

	for _, f := range result.OutputFiles {
		if filepath.Ext(f.Path) != ".js" {
			continue
		}
		if err := minify.Verify(contributing(sources, meta, workDir, f.Path), f.Contents, protected); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(f.Path), err)
		}
	}
	return nil
}

// contributing narrows sources to the inputs the metafile records as having
// bytes in output. Tree-shaken declarations are not expected to survive.
func contributing(sources map[string][]byte, meta BuildMetadata, workDir, output string) map[string][]byte {
	rel, err := filepath.Rel(workDir, output)
	if err != nil {
		return sources
	}
	info, ok := meta.Outputs[filepath.ToSlash(rel)]
	if !ok {
		return sources
	}

	out := make(map[string][]byte, len(info.Inputs))
	for path, count := range info.Inputs {
		if data, ok := sources[path]; ok && count.BytesInOutput > 0 {
			out[path] = data
		}
	}
	return out
}

func auditSources(auditor pipeline.AssetAuditor, meta *BuildMetadata, workDir string) ([]string, error) {
	matcher, err := audit.Compile(auditor.Ignore)
	if err != nil {
		return nil, err
	}

	reached := make(map[string]bool)
	for path := range meta.Inputs {
		if namespaced(path) {
			continue
		}
		rel, err := filepath.Rel(auditor.Root, filepath.Join(workDir, path))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		reached[filepath.ToSlash(rel)] = true
	}

	report, err := matcher.Audit(os.DirFS(auditor.Root), reached)
	if err != nil {
		return nil, err
	}

	for _, path := range report.Unused {
		log.Warn().Str("file", path).Msg("Unused source file")
	}
	return report.Unused, nil
}
