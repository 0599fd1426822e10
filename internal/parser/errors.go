package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import "errors"

// ErrSyntax indicates Ruby source that does not parse.
var ErrSyntax = errors.New("ruby syntax error")

// ErrInvalidSQL indicates SQL that PostgreSQL's parser rejects.
var ErrInvalidSQL = errors.New("invalid SQL")
