package analyzer

import "errors"

// ErrUnknownSeverity indicates a severity label that is not one of SAFE..CRITICAL.
var ErrUnknownSeverity = errors.New("unknown severity")

// ErrDuplicateRule indicates two rules registered under the same ID.
var ErrDuplicateRule = errors.New("duplicate rule id")

// ErrInvalidTrigger indicates a rule trigger naming an undeclared node kind.
var ErrInvalidTrigger = errors.New("invalid rule trigger")

// ErrInvalidOption indicates a rule option that is unknown or has the wrong type.
var ErrInvalidOption = errors.New("invalid rule option")
