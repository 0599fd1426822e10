package tracker

import "errors"

// ErrQueryFailed indicates the schema_migrations table could not be read.
var ErrQueryFailed = errors.New("reading schema_migrations")
