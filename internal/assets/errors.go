package assets

import "errors"

var (
	// ErrBuildFailed indicates the engine reported errors for a build pass
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNotBuilt indicates the pipeline has not completed a build yet
	ErrNotBuilt = errors.New("assets not built yet, call Build first")
	// ErrShellNotFound indicates no shell is configured for the requested file
	ErrShellNotFound = errors.New("shell not found in configuration")
)
