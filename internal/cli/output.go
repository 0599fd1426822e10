package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/aqasim81/migrationcop/internal/analyzer"
)

// report writes results in the requested format.
func report(w io.Writer, format string, results []analyzer.AnalysisResult) error {
	switch format {
	case "json":
		return printJSON(w, results)
	case "", "text":
		printText(w, results)

		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// summary counts what a run found.
type summary struct {
	Inspected int `json:"inspected"`
	Offenses  int `json:"offenses"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

func summarize(results []analyzer.AnalysisResult) summary {
	s := summary{Inspected: len(results)}

	for i := range results {
		r := &results[i]
		if r.Err != nil {
			s.Failed++

			continue
		}

		for _, d := range r.Diagnostics {
			s.Offenses++

			if d.Corrected {
				s.Corrected++
			}
		}
	}

	return s
}

// printText writes one line per offense in the file:line:col form editors
// understand, followed by a summary.
func printText(w io.Writer, results []analyzer.AnalysisResult) {
	faint := color.New(color.Faint)
	bad := color.New(color.FgRed)

	for i := range results {
		r := &results[i]
		path := r.Migration.FilePath

		if r.Err != nil {
			fmt.Fprintf(w, "%s: %s %v\n", path, bad.Sprint("error:"), r.Err)

			continue
		}

		for _, d := range r.Diagnostics {
			label := d.Severity.Color().Sprint(d.Severity.String())
			if d.Corrected {
				label = faint.Sprint("[Corrected]")
			} else if d.Correctable {
				label += faint.Sprint(" [Correctable]")
			}

			fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, d.Line, d.Column, label, d.Rule, d.Message)
		}

		for _, c := range r.Conflicts {
			fmt.Fprintf(w, "%s: %s %s\n", path, faint.Sprint("skipped correction:"), c)
		}
	}

	s := summarize(results)

	fmt.Fprintf(w, "\n%d migration(s) inspected, %d offense(s) detected", s.Inspected, s.Offenses)

	if s.Corrected > 0 {
		fmt.Fprintf(w, ", %d corrected", s.Corrected)
	}

	if s.Failed > 0 {
		fmt.Fprintf(w, ", %s", bad.Sprintf("%d failed", s.Failed))
	}

	fmt.Fprintln(w)
}

type jsonOffense struct {
	analyzer.Diagnostic
	Severity string `json:"severity"`
}

type jsonFile struct {
	Path     string        `json:"path"`
	Version  string        `json:"version,omitempty"`
	Offenses []jsonOffense `json:"offenses"`
	Error    string        `json:"error,omitempty"`
}

type jsonReport struct {
	Files   []jsonFile `json:"files"`
	Summary summary    `json:"summary"`
}

func printJSON(w io.Writer, results []analyzer.AnalysisResult) error {
	out := jsonReport{Files: make([]jsonFile, 0, len(results)), Summary: summarize(results)}

	for i := range results {
		r := &results[i]
		f := jsonFile{
			Path:     r.Migration.FilePath,
			Version:  r.Migration.Version,
			Offenses: make([]jsonOffense, 0, len(r.Diagnostics)),
		}

		if r.Err != nil {
			f.Error = r.Err.Error()
		}

		for _, d := range r.Diagnostics {
			f.Offenses = append(f.Offenses, jsonOffense{Diagnostic: d, Severity: d.Severity.String()})
		}

		out.Files = append(out.Files, f)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return nil
}
