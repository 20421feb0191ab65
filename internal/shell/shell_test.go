package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

func testChunks() map[string]Chunk {
	// insertion order deliberately differs from the shell order
	return map[string]Chunk{
		pipeline.EntryMain:   {Scripts: []string{"app/dist/app-main.bundle.js?m"}},
		pipeline.EntryStyles: {Styles: []string{"app/dist/styles.bundle.css?s"}},
		pipeline.VendorChunk: {Scripts: []string{"app/dist/vendor.bundle.js?v"}},
	}
}

func TestPageFor_declaredOrder(t *testing.T) {
	spec := pipeline.ShellEmitter{Chunks: pipeline.ShellChunks(pipeline.EntryMain)}

	page := PageFor(spec, testChunks())
	require.Equal(t, pipeline.EntryMain, page.Entry)
	require.Equal(t, []string{
		"app/dist/vendor.bundle.js?v",
		"app/dist/app-main.bundle.js?m",
	}, page.Scripts)
	require.Equal(t, []string{"app/dist/styles.bundle.css?s"}, page.Styles)
}

func TestPageFor_missingChunkSkipped(t *testing.T) {
	spec := pipeline.ShellEmitter{Chunks: pipeline.ShellChunks(pipeline.EntryEmbed)}

	page := PageFor(spec, map[string]Chunk{
		pipeline.EntryEmbed: {Scripts: []string{"embed.js"}},
	})
	require.Equal(t, []string{"embed.js"}, page.Scripts)
	require.Empty(t, page.Styles)
}

func TestEmitter_Emit(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "app", "dist")

	e := New(outDir, nil)
	spec := pipeline.ShellEmitter{
		Filename:          "../../index.html",
		Chunks:            pipeline.ShellChunks(pipeline.EntryMain),
		AlwaysWriteToDisk: true,
	}

	path, doc, err := e.Emit(spec, testChunks(), false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "index.html"), path)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, doc, onDisk)

	html := string(doc)
	vendor := strings.Index(html, "vendor.bundle.js")
	styles := strings.Index(html, "styles.bundle.css")
	main := strings.Index(html, "app-main.bundle.js")
	require.True(t, vendor >= 0 && styles >= 0 && main >= 0)
	require.Less(t, vendor, main)
}

func TestEmitter_Emit_notWritten(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)
	spec := pipeline.ShellEmitter{Filename: "public.html", Chunks: pipeline.ShellChunks(pipeline.EntryPublic)}

	path, doc, err := e.Emit(spec, testChunks(), false)
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	require.NoFileExists(t, path)
}

func TestEmitter_customTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "index_template.html")
	require.NoError(t, os.WriteFile(tmplPath, []byte(`{{ range .Scripts }}{{ . }};{{ end }}{{ marshal .Entry | safe }}`), 0o600))

	e := New(dir, nil)
	spec := pipeline.ShellEmitter{
		Filename: "embed.html",
		Template: tmplPath,
		Chunks:   pipeline.ShellChunks(pipeline.EntryMain),
	}

	_, doc, err := e.Emit(spec, testChunks(), true)
	require.NoError(t, err)
	require.Equal(t, "app/dist/vendor.bundle.js?v;app/dist/app-main.bundle.js?m;\"app-main\"\n", string(doc))
}
