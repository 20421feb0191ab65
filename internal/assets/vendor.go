package assets

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

const (
	vendorNamespace = "vendor"
	vendorRegistry  = "globalThis.__clientpack_vendor__"
)

// VendorSpecifiers returns the sorted import specifiers, written by
// application modules, that resolve to dependency-origin modules.
func VendorSpecifiers(meta *BuildMetadata, splitter pipeline.ChunkSplitter) []string {
	seen := make(map[string]bool)
	var out []string

	for path, input := range meta.Inputs {
		if namespaced(path) || splitter.Classify(pipeline.ResolveModule(path)) {
			continue
		}
		for _, imp := range input.Imports {
			if imp.External || !bareSpecifier(imp.Original) {
				continue
			}
			if !splitter.Classify(pipeline.ResolveModule(imp.Path)) || seen[imp.Original] {
				continue
			}
			seen[imp.Original] = true
			out = append(out, imp.Original)
		}
	}

	slices.Sort(out)
	return out
}

func bareSpecifier(spec string) bool {
	return spec != "" &&
		!strings.HasPrefix(spec, ".") &&
		!strings.HasPrefix(spec, "/") &&
		!strings.Contains(spec, ":")
}

// vendorSource is the entry module of the vendor bundle: it registers every
// specifier on a global registry that entry bundles read from.
func vendorSource(specifiers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "var r = %s = %s || {};\n", vendorRegistry, vendorRegistry)
	for _, spec := range specifiers {
		q := quote(spec)
		fmt.Fprintf(&b, "r[%s] = require(%s);\n", q, q)
	}
	return b.String()
}

// shimSource is the module an entry bundle sees in place of a vendor module.
func shimSource(spec string) string {
	return fmt.Sprintf("module.exports = %s[%s];\n", vendorRegistry, quote(spec))
}

// vendorShimPlugin redirects vendor specifiers to registry shims so entry
// bundles never inline dependency code.
func vendorShimPlugin(specifiers []string) api.Plugin {
	vendored := make(map[string]bool, len(specifiers))
	for _, s := range specifiers {
		vendored[s] = true
	}

	return api.Plugin{
		Name: "vendor-shim",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^[^./]`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if !vendored[args.Path] {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: args.Path, Namespace: vendorNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: vendorNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents := shimSource(args.Path)
					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil
				})
		},
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
