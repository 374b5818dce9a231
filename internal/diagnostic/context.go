package diagnostic

import (
	"fmt"
	"os"
	"strings"

	tserrors "tserr/internal/errors"
)

// ContextExtractor reads surrounding source lines for a diagnostic so a human
// (or a downstream suggestion collaborator) can see the code in question.
// Pure file I/O; no analysis happens here.
type ContextExtractor struct {
	// Lines is the number of lines shown before and after the diagnostic line
	Lines int
}

// NewContextExtractor creates an extractor with the given window size.
// A non-positive window falls back to 3 lines each side.
func NewContextExtractor(lines int) *ContextExtractor {
	if lines <= 0 {
		lines = 3
	}
	return &ContextExtractor{Lines: lines}
}

// Extract returns the source context around the 1-based line of the file.
// The diagnostic line is marked with ">". An unreadable file returns an
// error the caller records as a run warning, never a fatal failure.
func (e *ContextExtractor) Extract(path string, line int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", tserrors.New(tserrors.FileUnreadable, fmt.Sprintf("reading %s", path), err)
	}

	lines := strings.Split(string(data), "\n")
	if line < 1 || line > len(lines) {
		return "", nil
	}

	start := line - 1 - e.Lines
	if start < 0 {
		start = 0
	}
	end := line - 1 + e.Lines
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		marker := " "
		if i == line-1 {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %4d | %s\n", marker, i+1, lines[i])
	}
	return b.String(), nil
}

// Annotate fills the Context field of each diagnostic in place. Failures are
// returned as warnings; diagnostics whose file cannot be read keep an empty
// context and the file is not retried within the call.
func (e *ContextExtractor) Annotate(diags []*Diagnostic) []tserrors.RunWarning {
	var warnings []tserrors.RunWarning
	unreadable := make(map[string]bool)

	for _, d := range diags {
		if unreadable[d.File] {
			continue
		}
		ctx, err := e.Extract(d.File, d.Line)
		if err != nil {
			unreadable[d.File] = true
			warnings = append(warnings, tserrors.Warn(tserrors.StageContext, d.File, err))
			continue
		}
		d.Context = ctx
	}
	return warnings
}
