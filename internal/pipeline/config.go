package pipeline

import (
	"maps"
	"path/filepath"
	"slices"
)

// SourceMap is the source-map strategy handed to the engine.
type SourceMap string

const (
	SourceMapNone  SourceMap = "none"
	SourceMapCheap SourceMap = "cheap-module-source-map"
	SourceMapFull  SourceMap = "source-map"
)

const (
	devLocalIdentName  = "[name]__[local]___[hash:base64:5]"
	prodLocalIdentName = "[hash:base64:5]"

	// NodeEnvKey is the expression replaced by the EnvInliner.
	NodeEnvKey = "process.env.NODE_ENV"
)

const (
	licenseBanner = "/*\n" +
		"* This file is subject to the terms and conditions defined in\n" +
		" * file 'LICENSE.txt', which is part of this source code package.\n" +
		" */\n"
	embeddingLicenseBanner = "/*\n" +
		"* This file is subject to the terms and conditions defined in\n" +
		" * file 'LICENSE-EMBEDDING.txt', which is part of this source code package.\n" +
		" */\n"
)

// DefaultAuditIgnore lists files expected to be unreferenced by any entry.
var DefaultAuditIgnore = []string{
	"**/types.js",
	"**/types/*.js",
	"**/*.spec.*",
	"**/__support__/*.js",
	"**/__mocks__/*.js*",
	"internal/lib/components-node.js",
}

// ResolveExtensions are tried in order when an import omits its extension.
var ResolveExtensions = []string{".webpack.js", ".web.js", ".js", ".jsx", ".css"}

// Layout locates the client's source and build trees.
type Layout struct {
	Root       string `yaml:"root"`
	SourceDir  string `yaml:"sourceDir"`
	LibDir     string `yaml:"libDir"`
	SupportDir string `yaml:"supportDir"`
	BuildDir   string `yaml:"buildDir"`
	Template   string `yaml:"template"`
	// TranspileCache is the transpiler cache directory, "" disables it.
	TranspileCache string `yaml:"transpileCache,omitempty"`
}

// DefaultLayout returns the standard layout rooted at root.
func DefaultLayout(root string) Layout {
	buildDir := filepath.Join(root, "resources", "frontend_client")
	return Layout{
		Root:           root,
		SourceDir:      filepath.Join(root, "frontend", "src", "app"),
		LibDir:         filepath.Join(root, "frontend", "src", "app-lib"),
		SupportDir:     filepath.Join(root, "frontend", "test", "__support__"),
		BuildDir:       buildDir,
		Template:       filepath.Join(buildDir, "index_template.html"),
		TranspileCache: ".transpile_cache",
	}
}

// DevServer describes the external hot-reload server.
type DevServer struct {
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	Hot         bool              `yaml:"hot"`
	Inline      bool              `yaml:"inline"`
	ContentBase string            `yaml:"contentBase"`
	Headers     map[string]string `yaml:"headers"`
}

// Config is the complete pipeline configuration for one build invocation.
type Config struct {
	Mode       Mode              `yaml:"mode"`
	Context    string            `yaml:"context"`
	Entries    []EntryDescriptor `yaml:"entries"`
	Output     OutputSpec        `yaml:"output"`
	Rules      Registry          `yaml:"rules"`
	Extensions []string          `yaml:"extensions"`
	Aliases    AliasTable        `yaml:"aliases"`
	Plugins    Plugins           `yaml:"plugins"`
	SourceMap  SourceMap         `yaml:"sourceMap"`
	DevServer  *DevServer        `yaml:"devServer,omitempty"`
}

// Base returns the mode-independent configuration for layout.
func Base(layout Layout) Config {
	transpile := map[string]any{}
	if layout.TranspileCache != "" {
		transpile["cacheDirectory"] = layout.TranspileCache
	}
	css := map[string]any{
		"localIdentName": devLocalIdentName,
		"url":            false,
		"importLoaders":  1,
	}

	return Config{
		Mode:    ModeDevelopment,
		Context: layout.SourceDir,
		Entries: defaultEntries(),
		Output: OutputSpec{
			Directory:          filepath.Join(layout.BuildDir, "app", "dist"),
			FilenameTemplate:   FilenameTemplate,
			StylesheetTemplate: StylesheetTemplate,
			PublicPath:         PublicPath,
		},
		Rules:      defaultRegistry(transpile, css),
		Extensions: slices.Clone(ResolveExtensions),
		Aliases: AliasTable{
			{Prefix: "app", Path: layout.SourceDir},
			{Prefix: "app-lib", Path: layout.LibDir},
			{Prefix: "__support__", Path: layout.SupportDir},
			{Prefix: "style", Path: filepath.Join(layout.SourceDir, "css", "core", "index")},
			{Prefix: "ace", Path: filepath.Join(layout.Root, DependencyRoot, "ace-builds", "src-min-noconflict")},
		},
		Plugins: Plugins{
			ChunkSplitter{Name: VendorChunk},
			AssetAuditor{Root: layout.SourceDir, Ignore: slices.Clone(DefaultAuditIgnore)},
			StylesheetExtractor{FilenameTemplate: StylesheetTemplate},
			shell("../../index.html", layout.Template, EntryMain),
			shell("../../public.html", layout.Template, EntryPublic),
			shell("../../embed.html", layout.Template, EntryEmbed),
			EnvInliner{Values: map[string]string{NodeEnvKey: `"development"`}},
			BannerInjector{Banners: BannerMap{
				EntryMain:   licenseBanner,
				EntryPublic: licenseBanner,
				EntryEmbed:  embeddingLicenseBanner,
			}},
		},
		SourceMap: SourceMapNone,
	}
}

func shell(filename, template, entry string) ShellEmitter {
	return ShellEmitter{
		Filename:          filename,
		Template:          template,
		Chunks:            ShellChunks(entry),
		Inject:            "head",
		AlwaysWriteToDisk: true,
	}
}

// ShellChunks is the fixed chunk order every HTML shell references.
func ShellChunks(entry string) []string {
	return []string{VendorChunk, EntryStyles, entry}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.Entries = slices.Clone(c.Entries)
	out.Rules = c.Rules.clone()
	out.Extensions = slices.Clone(c.Extensions)
	out.Aliases = slices.Clone(c.Aliases)
	out.Plugins = c.Plugins.clone()
	if c.DevServer != nil {
		ds := *c.DevServer
		ds.Headers = maps.Clone(c.DevServer.Headers)
		out.DevServer = &ds
	}
	return out
}

// ScriptEntries returns the entries that produce a script bundle.
func (c Config) ScriptEntries() []EntryDescriptor {
	var out []EntryDescriptor
	for _, e := range c.Entries {
		if !e.StylesheetOnly {
			out = append(out, e)
		}
	}
	return out
}
