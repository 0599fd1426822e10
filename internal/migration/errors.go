package migration

import "errors"

// ErrInvalidPattern indicates an include or exclude glob that cannot be parsed.
var ErrInvalidPattern = errors.New("invalid glob pattern")
