// Package audit finds source files that no entry point reaches.
package audit

import (
	"fmt"
	"io/fs"
	"path"
	"slices"

	"github.com/gobwas/glob"
)

// Matcher holds pre-compiled ignore patterns. Patterns are tried in
// declaration order and the first match wins.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// Compile builds a Matcher from glob patterns using '/' as the separator.
func Compile(patterns []string) (*Matcher, error) {
	m := &Matcher{
		patterns: slices.Clone(patterns),
		globs:    make([]glob.Glob, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match returns the first pattern that matches name.
func (m *Matcher) Match(name string) (string, bool) {
	for i, g := range m.globs {
		if g.Match(name) {
			return m.patterns[i], true
		}
	}
	return "", false
}

// Ignored records a file excluded from the report and the pattern that
// excluded it.
type Ignored struct {
	Path    string
	Pattern string
}

// Report lists unreached files, sorted by path.
type Report struct {
	Unused  []string
	Ignored []Ignored
}

// Audit walks fsys and reports every regular file that is neither in reached
// nor matched by an ignore pattern. Paths are slash separated and relative to
// the root of fsys.
func (m *Matcher) Audit(fsys fs.FS, reached map[string]bool) (Report, error) {
	var report Report

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name != "." && path.Base(name) == "node_modules" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || reached[name] {
			return nil
		}
		if pattern, ok := m.Match(name); ok {
			report.Ignored = append(report.Ignored, Ignored{Path: name, Pattern: pattern})
			return nil
		}
		report.Unused = append(report.Unused, name)
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to walk source tree: %w", err)
	}

	return report, nil
}
