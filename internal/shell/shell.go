// Package shell renders the HTML documents that bootstrap each entry.
package shell

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientpack/internal/pipeline"
)

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
{{- range .Styles }}
<link href="{{ . }}" rel="stylesheet">
{{- end }}
{{- range .Scripts }}
<script type="text/javascript" src="{{ . }}"></script>
{{- end }}
</head>
<body></body>
</html>
`

// Chunk holds the URLs emitted for one named chunk.
type Chunk struct {
	Scripts []string
	Styles  []string
}

// Page is the data passed to a shell template.
type Page struct {
	Title   string
	Entry   string
	Styles  []string
	Scripts []string
}

// Emitter renders shells from their templates, parsing each template once.
type Emitter struct {
	outputDir string
	funcs     template.FuncMap
	templates map[string]*template.Template
	mu        sync.Mutex
}

// New creates an Emitter writing relative to outputDir.
func New(outputDir string, customFuncs template.FuncMap) *Emitter {
	funcs := template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}

	maps.Copy(funcs, customFuncs)

	return &Emitter{
		outputDir: outputDir,
		funcs:     funcs,
		templates: make(map[string]*template.Template),
	}
}

// PageFor builds the page for spec. Tags follow the declared chunk order;
// chunks absent from chunks are skipped.
func PageFor(spec pipeline.ShellEmitter, chunks map[string]Chunk) Page {
	page := Page{Title: "", Styles: []string{}, Scripts: []string{}}
	if n := len(spec.Chunks); n > 0 {
		page.Entry = spec.Chunks[n-1]
	}

	for _, name := range spec.Chunks {
		c, ok := chunks[name]
		if !ok {
			log.Debug().Str("shell", spec.Filename).Str("chunk", name).Msg("Chunk not emitted, skipping")
			continue
		}
		page.Styles = append(page.Styles, c.Styles...)
		page.Scripts = append(page.Scripts, c.Scripts...)
	}

	return page
}

// Emit renders spec and writes it when the shell asks to always be written
// or when write is set. It returns the path and the rendered document.
func (e *Emitter) Emit(spec pipeline.ShellEmitter, chunks map[string]Chunk, write bool) (string, []byte, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf, spec, chunks); err != nil {
		return "", nil, err
	}

	path := filepath.Join(e.outputDir, spec.Filename)
	if !spec.AlwaysWriteToDisk && !write {
		return path, buf.Bytes(), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", nil, err
	}

	log.Info().Str("file", path).Strs("chunks", spec.Chunks).Msg("Wrote shell")
	return path, buf.Bytes(), nil
}

// Render executes the shell's template for chunks into w.
func (e *Emitter) Render(w io.Writer, spec pipeline.ShellEmitter, chunks map[string]Chunk) error {
	e.mu.Lock()
	tmpl, err := e.template(spec.Template)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	if err := tmpl.Execute(w, PageFor(spec, chunks)); err != nil {
		return fmt.Errorf("failed to render %s: %w", spec.Filename, err)
	}
	return nil
}

func (e *Emitter) template(path string) (*template.Template, error) {
	if t, ok := e.templates[path]; ok {
		return t, nil
	}

	var (
		t   *template.Template
		err error
	)
	if path == "" {
		t, err = template.New("shell").Funcs(e.funcs).Parse(defaultTemplate)
	} else {
		t, err = template.New(filepath.Base(path)).Funcs(e.funcs).ParseFiles(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shell template: %w", err)
	}

	e.templates[path] = t
	return t, nil
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
