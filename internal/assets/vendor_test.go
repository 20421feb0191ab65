package assets

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

func TestVendorSpecifiers(t *testing.T) {
	meta := &BuildMetadata{
		Inputs: map[string]InputInfo{
			"frontend/src/app/app-main.js": {Imports: []ImportInfo{
				{Path: "node_modules/react/index.js", Original: "react"},
				{Path: "frontend/src/app/lib/util.js", Original: "./lib/util"},
				{Path: "frontend/src/app/lib/format.js", Original: "app/lib/format"},
				{Path: "node_modules/ace-builds/src-noconflict/ace.js", Original: "ace/ace"},
				{Path: "https://cdn.example.com/x.js", Original: "https://cdn.example.com/x.js", External: true},
			}},
			"frontend/src/app/app-public.js": {Imports: []ImportInfo{
				{Path: "node_modules/react/index.js", Original: "react"},
				{Path: "node_modules/lodash/get.js", Original: "lodash/get"},
			}},
			"node_modules/react/index.js": {Imports: []ImportInfo{
				{Path: "node_modules/object-assign/index.js", Original: "object-assign"},
			}},
			"vendor:react": {},
		},
	}

	got := VendorSpecifiers(meta, pipeline.ChunkSplitter{Name: pipeline.VendorChunk})
	require.Equal(t, []string{"ace/ace", "lodash/get", "react"}, got)
}

func TestVendorSource(t *testing.T) {
	src := vendorSource([]string{"react", "lodash/get"})
	require.Equal(t, `var r = globalThis.__clientpack_vendor__ = globalThis.__clientpack_vendor__ || {};
r["react"] = require("react");
r["lodash/get"] = require("lodash/get");
`, src)

	require.Equal(t, "module.exports = globalThis.__clientpack_vendor__[\"react\"];\n", shimSource("react"))
}

func TestNamespaced(t *testing.T) {
	require.True(t, namespaced("vendor:react"))
	require.False(t, namespaced("frontend/src/app/app-main.js"))
	require.False(t, namespaced("<stdin>"))
	require.False(t, namespaced(`C:\repo\app.js`))
}

func TestContentHash(t *testing.T) {
	a := contentHash([]byte("console.log(1)"))
	require.Equal(t, a, contentHash([]byte("console.log(1)")))
	require.NotEqual(t, a, contentHash([]byte("console.log(2)")))
	require.NotContains(t, a, "?")
}
