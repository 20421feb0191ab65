package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProbe map[string]bool

func (f fakeProbe) Exists(path string) bool { return f[path] }

func TestUnminifiedPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
		ok       bool
	}{
		{
			name:     "dash segment is not a marker",
			path:     "/repo/node_modules/ace-builds/src-min-noconflict",
			expected: "/repo/node_modules/ace-builds/src-min-noconflict",
			ok:       false,
		},
		{
			name:     "dot marker before extension",
			path:     "/repo/vendor/lib.min.js",
			expected: "/repo/vendor/lib.js",
			ok:       true,
		},
		{
			name:     "directory marker",
			path:     "/repo/dist/min/lib.js",
			expected: "/repo/dist/lib.js",
			ok:       true,
		},
		{
			name:     "marker must end on a word boundary",
			path:     "/repo/src/minimal",
			expected: "/repo/src/minimal",
			ok:       false,
		},
		{
			name:     "no marker",
			path:     "/repo/frontend/src/app",
			expected: "/repo/frontend/src/app",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := UnminifiedPath(tt.path)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.ok, ok)
		})
	}
}

func TestAliasTable_Resolve(t *testing.T) {
	minified := "/repo/node_modules/chart/dist/chart.min.js"
	unminified := "/repo/node_modules/chart/dist/chart.js"
	ace := "/repo/node_modules/ace-builds/src-min-noconflict"

	table := AliasTable{
		{Prefix: "app", Path: "/repo/src/app"},
		{Prefix: "chart", Path: minified},
		{Prefix: "ace", Path: ace},
	}

	t.Run("substitutes when sibling exists", func(t *testing.T) {
		probe := fakeProbe{unminified: true}

		resolved := table.Resolve(ModeDevelopment, probe)
		path, ok := resolved.Lookup("chart")
		require.True(t, ok)
		require.Equal(t, unminified, path)

		path, _ = resolved.Lookup("app")
		require.Equal(t, "/repo/src/app", path)
	})

	t.Run("dash segments are never rewritten", func(t *testing.T) {
		probe := fakeProbe{"/repo/node_modules/ace-builds/src-noconflict": true}
		path, _ := table.Resolve(ModeDevelopment, probe).Lookup("ace")
		require.Equal(t, ace, path)
	})

	t.Run("keeps minified path when sibling is missing", func(t *testing.T) {
		resolved := table.Resolve(ModeHot, fakeProbe{})
		path, _ := resolved.Lookup("chart")
		require.Equal(t, minified, path)
	})

	t.Run("removing the sibling restores the minified path", func(t *testing.T) {
		probe := fakeProbe{unminified: true}
		path, _ := table.Resolve(ModeDevelopment, probe).Lookup("chart")
		require.Equal(t, unminified, path)

		delete(probe, unminified)
		path, _ = table.Resolve(ModeDevelopment, probe).Lookup("chart")
		require.Equal(t, minified, path)
	})

	t.Run("production never substitutes", func(t *testing.T) {
		resolved := table.Resolve(ModeProduction, fakeProbe{unminified: true})
		require.Equal(t, table, resolved)
	})

	t.Run("does not modify the receiver", func(t *testing.T) {
		_ = table.Resolve(ModeDevelopment, fakeProbe{unminified: true})
		path, _ := table.Lookup("chart")
		require.Equal(t, minified, path)
	})
}

func TestOSProbe(t *testing.T) {
	dir := t.TempDir()
	require.True(t, OSProbe{}.Exists(dir))
	require.False(t, OSProbe{}.Exists(dir+"/missing"))
}
