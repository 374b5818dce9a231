// Package report renders an analysis as human-readable text or JSON and
// exports it to disk, optionally zstd-compressed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tserr/internal/scan"
)

// Options controls rendering.
type Options struct {
	// MaxFixOrder caps the fix-order section. Zero means show everything.
	MaxFixOrder int
	// MaxPatterns caps the pattern section. Zero means show everything.
	MaxPatterns int
	// Verbose includes source context snippets for each diagnostic.
	Verbose bool
}

// RenderJSON writes the full analysis as JSON.
func RenderJSON(w io.Writer, analysis *scan.Analysis, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(analysis); err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return nil
}

// RenderText writes the analysis as a terminal report.
func RenderText(w io.Writer, analysis *scan.Analysis, opts Options) error {
	r := analysis.Result

	fmt.Fprintf(w, "Scan %s\n", r.ID)
	fmt.Fprintf(w, "  started:  %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  duration: %s\n", r.Duration.Round(1e6))
	if r.Deep {
		fmt.Fprintf(w, "  mode:     deep\n")
	} else {
		fmt.Fprintf(w, "  mode:     incremental\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Diagnostics: %d total (%d new, %d recurring)\n", r.Total, r.New, r.Recurring)
	fmt.Fprintf(w, "  critical: %d  high: %d  medium: %d  low: %d\n", r.Critical, r.High, r.Medium, r.Low)
	if r.PersistenceSkipped {
		fmt.Fprintln(w, "  note: storage unavailable, results were not persisted")
	}
	fmt.Fprintln(w)

	if len(analysis.Patterns) > 0 {
		patterns := analysis.Patterns
		if opts.MaxPatterns > 0 && len(patterns) > opts.MaxPatterns {
			patterns = patterns[:opts.MaxPatterns]
		}
		fmt.Fprintf(w, "Patterns (%d)\n", len(analysis.Patterns))
		for _, p := range patterns {
			fmt.Fprintf(w, "  %-20s TS%-6s x%-4d in %d file(s)  [%s/%s]\n",
				p.Name, p.Code, p.Occurrences, len(p.AffectedFiles), p.Category, p.Severity)
			if p.SuggestedFix != "" {
				fmt.Fprintf(w, "    fix: %s\n", p.SuggestedFix)
			}
		}
		fmt.Fprintln(w)
	}

	if len(analysis.RootCauses) > 0 {
		fmt.Fprintf(w, "Likely root causes (%d)\n", len(analysis.RootCauses))
		for i, c := range analysis.RootCauses {
			d := c.Diagnostic
			fmt.Fprintf(w, "  %d. %s:%d:%d TS%s (%s, %d dependent file(s))\n",
				i+1, d.File, d.Line, d.Column, d.Code, d.Severity, c.Dependents)
			fmt.Fprintf(w, "     %s\n", d.Message)
		}
		fmt.Fprintln(w)
	}

	if len(analysis.FixOrder) > 0 {
		ranked := analysis.FixOrder
		if opts.MaxFixOrder > 0 && len(ranked) > opts.MaxFixOrder {
			ranked = ranked[:opts.MaxFixOrder]
		}
		fmt.Fprintf(w, "Suggested fix order (top %d of %d)\n", len(ranked), len(analysis.FixOrder))
		for i, f := range ranked {
			d := f.Diagnostic
			fmt.Fprintf(w, "  %d. [%3d] %s:%d:%d TS%s %s\n",
				i+1, f.Score, d.File, d.Line, d.Column, d.Code, d.Message)
			if opts.Verbose && d.Context != "" {
				for _, line := range strings.Split(strings.TrimRight(d.Context, "\n"), "\n") {
					fmt.Fprintf(w, "       %s\n", line)
				}
			}
		}
		fmt.Fprintln(w)
	}

	if len(analysis.RiskReports) > 0 {
		fmt.Fprintf(w, "Preventative risk (%d file(s))\n", len(analysis.RiskReports))
		for _, fr := range analysis.RiskReports {
			fmt.Fprintf(w, "  %s (score %.2f)\n", fr.File, fr.RiskScore)
			for _, finding := range fr.Findings {
				fmt.Fprintf(w, "    %d:%d %s [%s, confidence %.2f]\n",
					finding.Line, finding.Column, finding.Pattern, finding.Level, finding.Confidence)
				if finding.SuggestedFix != "" {
					fmt.Fprintf(w, "      fix: %s\n", finding.SuggestedFix)
				}
			}
		}
		fmt.Fprintln(w)
	}

	if len(analysis.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings (%d)\n", len(analysis.Warnings))
		for _, warn := range analysis.Warnings {
			if warn.Path != "" {
				fmt.Fprintf(w, "  [%s] %s: %s\n", warn.Stage, warn.Path, warn.Message)
			} else {
				fmt.Fprintf(w, "  [%s] %s\n", warn.Stage, warn.Message)
			}
		}
	}

	return nil
}
