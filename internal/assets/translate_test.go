package assets

import (
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/clientpack/internal/minify"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

func TestLoaders(t *testing.T) {
	layout := pipeline.DefaultLayout("/repo")

	tests := []struct {
		name     string
		mode     pipeline.Mode
		expected map[string]api.Loader
	}{
		{
			name: "development",
			mode: pipeline.ModeDevelopment,
			expected: map[string]api.Loader{
				".js":    api.LoaderJSX,
				".jsx":   api.LoaderJSX,
				".css":   api.LoaderCSS,
				".eot":   api.LoaderFile,
				".woff":  api.LoaderFile,
				".woff2": api.LoaderFile,
				".ttf":   api.LoaderFile,
				".svg":   api.LoaderFile,
				".png":   api.LoaderFile,
			},
		},
		{
			name: "hot",
			mode: pipeline.ModeHot,
			expected: map[string]api.Loader{
				".js":    api.LoaderJSX,
				".jsx":   api.LoaderJSX,
				".css":   api.LoaderCSS,
				".eot":   api.LoaderFile,
				".woff":  api.LoaderFile,
				".woff2": api.LoaderFile,
				".ttf":   api.LoaderFile,
				".svg":   api.LoaderFile,
				".png":   api.LoaderFile,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := pipeline.Build(layout, pipeline.Options{Mode: tt.mode})
			require.Equal(t, tt.expected, Loaders(cfg.Rules))
		})
	}
}

func TestInjectsStyles(t *testing.T) {
	layout := pipeline.DefaultLayout("/repo")

	withoutExtractor := pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeDevelopment})
	withoutExtractor.Plugins = withoutExtractor.Plugins.Without(pipeline.KindStylesheetExtractor)

	injectingChain := pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeProduction})
	idx := injectingChain.Rules.Index(pipeline.RuleStylesheet)
	require.GreaterOrEqual(t, idx, 0)
	chain := injectingChain.Rules[idx].Chain
	chain[len(chain)-1] = pipeline.TransformStep{ID: pipeline.StepStyleInject}

	tests := []struct {
		name     string
		cfg      pipeline.Config
		expected bool
	}{
		{name: "development extracts", cfg: pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeDevelopment})},
		{name: "production extracts", cfg: pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeProduction})},
		{name: "hot injects", cfg: pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeHot}), expected: true},
		{name: "no extractor injects", cfg: withoutExtractor, expected: true},
		{name: "style-inject terminal step injects", cfg: injectingChain, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, InjectsStyles(tt.cfg))
		})
	}
}

func TestExternalSteps(t *testing.T) {
	cfg := pipeline.Build(pipeline.DefaultLayout("/repo"), pipeline.Options{Mode: pipeline.ModeHot})
	require.Equal(t, []string{pipeline.StepHotReload, pipeline.StepLint}, ExternalSteps(cfg.Rules))
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "app-main.bundle", OutputName(pipeline.FilenameTemplate, "app-main"))
	require.Equal(t, "vendor.hot.bundle", OutputName(pipeline.HotFilenameTemplate, "vendor"))
	require.Equal(t, "styles.bundle", OutputName(pipeline.StylesheetTemplate, "styles"))
}

func TestTranslate(t *testing.T) {
	layout := pipeline.DefaultLayout("/repo")
	protected, err := minify.NewProtectedIdentifierSet("Plus")
	require.NoError(t, err)

	t.Run("production minifies and keeps names", func(t *testing.T) {
		cfg := pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeProduction, Protected: protected})
		opts := Translate(cfg, "/repo")

		require.True(t, opts.MinifyIdentifiers)
		require.True(t, opts.MinifySyntax)
		require.True(t, opts.MinifyWhitespace)
		require.True(t, opts.KeepNames)
		require.Equal(t, api.SourceMapLinked, opts.Sourcemap)
		require.Equal(t, api.SourcesContentInclude, opts.SourcesContent)
		require.Equal(t, `"production"`, opts.Define[pipeline.NodeEnvKey])
		require.Empty(t, opts.SourceRoot)
		require.Equal(t, "app/dist/", opts.PublicPath)
	})

	t.Run("development uses cheap source maps", func(t *testing.T) {
		cfg := pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeDevelopment})
		opts := Translate(cfg, "/repo")

		require.False(t, opts.MinifyIdentifiers)
		require.False(t, opts.KeepNames)
		require.Equal(t, api.SourceMapLinked, opts.Sourcemap)
		require.Equal(t, api.SourcesContentExclude, opts.SourcesContent)
		require.Equal(t, "/repo/resources/frontend_client/app/dist/", opts.SourceRoot)
		require.Equal(t, `"development"`, opts.Define[pipeline.NodeEnvKey])
		require.Equal(t, "/repo/frontend/src/app", opts.Alias["app"])
	})

	t.Run("hot points the public path at the dev server", func(t *testing.T) {
		cfg := pipeline.Build(layout, pipeline.Options{Mode: pipeline.ModeHot})
		opts := Translate(cfg, "/repo")

		require.Equal(t, "http://localhost:8080/app/dist/", opts.PublicPath)
		require.Equal(t, `"hot"`, opts.Define[pipeline.NodeEnvKey])
	})
}
