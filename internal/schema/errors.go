package schema

import "errors"

// ErrLoadFailed indicates a schema source that could not be read or parsed.
var ErrLoadFailed = errors.New("loading schema")
