package assets

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

var assetExternals = []string{"*.eot", "*.woff", "*.woff2", "*.ttf", "*.svg", "*.png"}

// styleInjectPlugin compiles each stylesheet with the engine's CSS loader and
// replaces it with a module that appends the result to the running page.
func styleInjectPlugin(base api.BuildOptions) api.Plugin {
	return api.Plugin{
		Name: "style-inject",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.css$`},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					css, err := compileStylesheet(base, args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					contents := injectSource(args.Path, css)
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

func compileStylesheet(base api.BuildOptions, path string) (string, error) {
	result := api.Build(api.BuildOptions{
		AbsWorkingDir:     base.AbsWorkingDir,
		EntryPoints:       []string{path},
		Bundle:            true,
		Write:             false,
		Outdir:            base.Outdir,
		Loader:            map[string]api.Loader{".css": api.LoaderCSS},
		Alias:             base.Alias,
		ResolveExtensions: base.ResolveExtensions,
		External:          assetExternals,
		LogLevel:          api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		return "", fmt.Errorf("failed to compile stylesheet %s: %s", path, result.Errors[0].Text)
	}

	for _, f := range result.OutputFiles {
		if filepath.Ext(f.Path) == ".css" {
			return string(f.Contents), nil
		}
	}

	return "", errors.New("stylesheet produced no css output")
}

func injectSource(path, css string) string {
	return fmt.Sprintf(`(function () {
  var el = document.createElement("style");
  el.setAttribute("data-source", %s);
  el.textContent = %s;
  document.head.appendChild(el);
})();
`, quote(path), quote(css))
}
