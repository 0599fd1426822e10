package analyzer

import (
	"sort"

	"github.com/aqasim81/migrationcop/internal/migration"
	"github.com/aqasim81/migrationcop/internal/patch"
	"github.com/aqasim81/migrationcop/internal/syntax"
)

// Diagnostic is one reported offense.
type Diagnostic struct {
	Rule        string      `json:"rule"`
	Severity    Severity    `json:"-"`
	Message     string      `json:"message"`
	Span        syntax.Span `json:"-"`
	Line        int         `json:"line"`
	Column      int         `json:"column"`
	Correctable bool        `json:"correctable"`
	Corrected   bool        `json:"corrected"`
}

// AnalysisResult holds the outcome for a single migration.
type AnalysisResult struct {
	Migration   *migration.Migration
	Diagnostics []Diagnostic
	Conflicts   []patch.Conflict
	Corrected   string   // corrected source; equals Migration.Source when nothing changed
	Passes      int      // correction passes applied
	MaxSeverity Severity // Highest severity across uncorrected diagnostics
	Err         error    // set when the unit could not be analyzed
}

// HasHighOrCritical returns true if any uncorrected diagnostic is High or Critical.
func (r *AnalysisResult) HasHighOrCritical() bool {
	return r.MaxSeverity >= High
}

// Changed reports whether correction modified the source.
func (r *AnalysisResult) Changed() bool {
	return r.Migration != nil && r.Err == nil && r.Corrected != r.Migration.Source
}

// Remaining returns the diagnostics that were not corrected.
func (r *AnalysisResult) Remaining() []Diagnostic {
	var out []Diagnostic

	for _, d := range r.Diagnostics {
		if !d.Corrected {
			out = append(out, d)
		}
	}

	return out
}

func (r *AnalysisResult) finish() {
	sortDiagnostics(r.Diagnostics)

	r.MaxSeverity = Safe

	for _, d := range r.Diagnostics {
		if !d.Corrected && d.Severity > r.MaxSeverity {
			r.MaxSeverity = d.Severity
		}
	}
}

// sortDiagnostics orders diagnostics by position. The sort is stable so that
// rules firing on the same node keep registration order.
func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Line != ds[j].Line {
			return ds[i].Line < ds[j].Line
		}

		return ds[i].Column < ds[j].Column
	})
}
