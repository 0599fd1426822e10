package analyzer

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Severity represents the danger level of a diagnostic.
type Severity int

const (
	// Safe indicates no danger detected.
	Safe Severity = iota
	// Low indicates a minor concern.
	Low
	// Medium indicates moderate risk with workarounds available.
	Medium
	// High indicates significant risk: table lock or rewrite likely.
	High
	// Critical indicates data loss or extended downtime guaranteed.
	Critical
)

// String returns the uppercase label for the severity level.
func (s Severity) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Color returns the terminal color used to print the severity label.
func (s Severity) Color() *color.Color {
	switch s {
	case Safe:
		return color.New(color.FgGreen)
	case Low:
		return color.New(color.FgCyan)
	case Medium:
		return color.New(color.FgYellow)
	case High:
		return color.New(color.FgRed)
	case Critical:
		return color.New(color.FgHiRed, color.Bold)
	default:
		return color.New(color.Reset)
	}
}

// ParseSeverity parses a case-insensitive severity label such as "high".
func ParseSeverity(s string) (Severity, error) {
	for sev := Safe; sev <= Critical; sev++ {
		if strings.EqualFold(s, sev.String()) {
			return sev, nil
		}
	}

	return Safe, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}
