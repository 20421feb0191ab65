package pipeline

import (
	"os"
	"regexp"
)

// minifiedMarker matches a ".min" or "/min" segment in a path. A "-min"
// segment is part of the name and is left alone.
var minifiedMarker = regexp.MustCompile(`[./]min\b`)

// FileProbe reports whether a path exists. It is the only filesystem access
// the resolver performs.
type FileProbe interface {
	Exists(path string) bool
}

// OSProbe checks the local disk.
type OSProbe struct{}

func (OSProbe) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Alias maps a symbolic module prefix to a concrete source path.
type Alias struct {
	Prefix string `yaml:"prefix"`
	Path   string `yaml:"path"`
}

// AliasTable is an ordered list of aliases.
type AliasTable []Alias

// Lookup returns the path registered for prefix.
func (t AliasTable) Lookup(prefix string) (string, bool) {
	for _, a := range t {
		if a.Prefix == prefix {
			return a.Path, true
		}
	}
	return "", false
}

// Map returns the table as prefix -> path.
func (t AliasTable) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, a := range t {
		m[a.Prefix] = a.Path
	}
	return m
}

// UnminifiedPath strips the minification marker from path. The second return
// value is false when the path carries no marker.
func UnminifiedPath(path string) (string, bool) {
	unminified := minifiedMarker.ReplaceAllString(path, "")
	return unminified, unminified != path
}

// Resolve returns a copy of the table with the minified/unminified preference
// applied for mode. Outside production every alias whose unminified sibling
// exists is pointed at it; missing siblings leave the alias untouched.
func (t AliasTable) Resolve(mode Mode, probe FileProbe) AliasTable {
	out := make(AliasTable, len(t))
	copy(out, t)

	if mode.IsProduction() || probe == nil {
		return out
	}

	for i, a := range out {
		unminified, ok := UnminifiedPath(a.Path)
		if ok && probe.Exists(unminified) {
			out[i].Path = unminified
		}
	}

	return out
}
