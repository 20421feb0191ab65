package pipeline

import (
	"fmt"
	"strings"
)

// Entry names of the client.
const (
	EntryMain   = "app-main"
	EntryPublic = "app-public"
	EntryEmbed  = "app-embed"
	EntryStyles = "styles"
)

// Filename template placeholders.
const (
	PlaceholderName        = "[name]"
	PlaceholderHash        = "[hash]"
	PlaceholderContentHash = "[contenthash]"
)

const (
	FilenameTemplate    = "[name].bundle.js?[hash]"
	HotFilenameTemplate = "[name].hot.bundle.js?[hash]"
	StylesheetTemplate  = "[name].bundle.css?[contenthash]"
	PublicPath          = "app/dist/"
)

// EntryDescriptor is a named root module that seeds one bundle.
type EntryDescriptor struct {
	Name       string `yaml:"name"`
	SourcePath string `yaml:"source"`
	// StylesheetOnly entries carry no script content.
	StylesheetOnly bool `yaml:"stylesheetOnly,omitempty"`
}

// OutputSpec governs where artifacts land and the URL prefix embedded in the
// generated HTML.
type OutputSpec struct {
	Directory          string `yaml:"directory"`
	FilenameTemplate   string `yaml:"filename"`
	StylesheetTemplate string `yaml:"stylesheetFilename"`
	PublicPath         string `yaml:"publicPath"`
	PathInfo           bool   `yaml:"pathinfo,omitempty"`
	SourceRootTemplate string `yaml:"sourceRootTemplate,omitempty"`
}

// Filename expands tmpl for an entry and cache-busting token.
func Filename(tmpl, name, hash string) string {
	out := strings.ReplaceAll(tmpl, PlaceholderName, name)
	out = strings.ReplaceAll(out, PlaceholderContentHash, hash)
	return strings.ReplaceAll(out, PlaceholderHash, hash)
}

// DiskName strips the query portion of a template: the hash is only ever
// part of the URL, never of the file on disk.
func DiskName(tmpl, name string) string {
	base, _, _ := strings.Cut(tmpl, "?")
	return strings.ReplaceAll(base, PlaceholderName, name)
}

// ScriptURL returns the URL of an entry's script bundle.
func (o OutputSpec) ScriptURL(name, hash string) string {
	return o.PublicPath + Filename(o.FilenameTemplate, name, hash)
}

// StylesheetURL returns the URL of an extracted stylesheet.
func (o OutputSpec) StylesheetURL(name, hash string) string {
	return o.PublicPath + Filename(o.StylesheetTemplate, name, hash)
}

// HotPublicPath points a public path at the hot dev server.
func HotPublicPath(host string, port int, publicPath string) string {
	return fmt.Sprintf("http://%s:%d/%s", host, port, publicPath)
}

func defaultEntries() []EntryDescriptor {
	return []EntryDescriptor{
		{Name: EntryMain, SourcePath: "./app-main.js"},
		{Name: EntryPublic, SourcePath: "./app-public.js"},
		{Name: EntryEmbed, SourcePath: "./app-embed.js"},
		{Name: EntryStyles, SourcePath: "./css/index.css", StylesheetOnly: true},
	}
}
