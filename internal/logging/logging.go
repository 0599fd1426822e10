// Package logging builds the zap logger shared by the CLI and the analyzer.
package logging

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""

	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level))
}

// ParseLevel maps a textual level such as "warn" to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}

	return lvl, nil
}

// ErrInvalidLevel indicates an unknown log level name.
var ErrInvalidLevel = errors.New("invalid log level")
