package minify

import "errors"

var (
	// ErrProtectedIdentifierRenamed indicates a protected identifier present in
	// the sources is missing from a minified bundle
	ErrProtectedIdentifierRenamed = errors.New("protected identifier renamed by minifier")
	// ErrInvalidIdentifier indicates a token source supplied a name that is not an identifier
	ErrInvalidIdentifier = errors.New("invalid protected identifier")
)
