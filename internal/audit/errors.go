package audit

import "errors"

// ErrInvalidPattern indicates an ignore glob failed to compile
var ErrInvalidPattern = errors.New("invalid ignore pattern")
