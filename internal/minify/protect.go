package minify

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// TokenSource supplies the token names of a grammar bundled into the
// application. Those names must survive minification unchanged.
type TokenSource interface {
	TokenNames() ([]string, error)
}

// ProtectedIdentifierSet is an immutable, sorted set of identifier names.
type ProtectedIdentifierSet struct {
	names []string
}

// NewProtectedIdentifierSet builds a set from names, dropping duplicates.
func NewProtectedIdentifierSet(names ...string) (ProtectedIdentifierSet, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !identifierPattern.MatchString(n) {
			return ProtectedIdentifierSet{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, n)
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return ProtectedIdentifierSet{names: slices.Compact(out)}, nil
}

// Load reads the full set from src.
func Load(src TokenSource) (ProtectedIdentifierSet, error) {
	names, err := src.TokenNames()
	if err != nil {
		return ProtectedIdentifierSet{}, fmt.Errorf("failed to read token names: %w", err)
	}
	return NewProtectedIdentifierSet(names...)
}

// Names returns a copy of the names in sorted order.
func (s ProtectedIdentifierSet) Names() []string {
	return slices.Clone(s.names)
}

func (s ProtectedIdentifierSet) Len() int { return len(s.names) }

func (s ProtectedIdentifierSet) Contains(name string) bool {
	_, ok := slices.BinarySearch(s.names, name)
	return ok
}

func (s ProtectedIdentifierSet) MarshalYAML() (any, error) {
	return s.Names(), nil
}

// FileSource reads token names exported by the grammar module as a YAML or
// JSON list of strings.
type FileSource struct {
	Path string
}

func (f FileSource) TokenNames() ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", f.Path, err)
	}

	return names, nil
}

// StaticSource is a fixed list of token names.
type StaticSource []string

func (s StaticSource) TokenNames() ([]string, error) {
	return slices.Clone(s), nil
}

// Verify checks that every protected identifier occurring in any of the
// sources still occurs, byte for byte, in the minified bundle.
func Verify(sources map[string][]byte, bundle []byte, set ProtectedIdentifierSet) error {
	var missing []string

	for _, name := range set.names {
		word := wordPattern(name)
		if !word.Match(bundle) && inAny(sources, word) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrProtectedIdentifierRenamed, strings.Join(missing, ", "))
	}

	return nil
}

func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^A-Za-z0-9_$])` + regexp.QuoteMeta(name) + `(?:$|[^A-Za-z0-9_$])`)
}

func inAny(sources map[string][]byte, word *regexp.Regexp) bool {
	for _, src := range sources {
		if word.Match(src) {
			return true
		}
	}
	return false
}
