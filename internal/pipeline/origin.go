package pipeline

import (
	"path/filepath"
	"strings"
)

// DependencyRoot is the directory segment that marks third-party modules.
const DependencyRoot = "node_modules"

// Origin records where a resolved module came from.
type Origin int

const (
	OriginApplication Origin = iota
	OriginDependency
)

func (o Origin) String() string {
	if o == OriginDependency {
		return "dependency"
	}
	return "application"
}

// Module is a resolved module tagged with its origin at resolution time.
type Module struct {
	Path   string
	Origin Origin
}

// ResolveModule tags path with its origin.
func ResolveModule(path string) Module {
	return Module{Path: path, Origin: OriginOf(path)}
}

// OriginOf classifies path by its segments: a module is a dependency iff one
// of its directory segments is DependencyRoot.
func OriginOf(path string) Origin {
	for seg := range strings.SplitSeq(filepath.ToSlash(path), "/") {
		if seg == DependencyRoot {
			return OriginDependency
		}
	}
	return OriginApplication
}
