package pattern

import "errors"

// ErrDuplicateCapture indicates a capture name is declared more than once.
var ErrDuplicateCapture = errors.New("duplicate capture name")

// ErrMalformedPattern indicates a pattern that can never be evaluated.
var ErrMalformedPattern = errors.New("malformed pattern")
