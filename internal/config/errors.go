package config

import (
	"errors"

	"github.com/aqasim81/migrationcop/internal/analyzer"
)

// ErrUnknownRule indicates a rules entry naming a rule that is not registered.
var ErrUnknownRule = errors.New("unknown rule")

// ErrInvalidSeverity indicates a rule severity that is not one of SAFE..CRITICAL.
var ErrInvalidSeverity = errors.New("invalid severity")

// ErrInvalidOption indicates a rule option the rule rejected.
var ErrInvalidOption = analyzer.ErrInvalidOption

// ErrInvalidFormat indicates an output format other than text or json.
var ErrInvalidFormat = errors.New("invalid output format")
