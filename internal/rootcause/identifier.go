// Package rootcause ranks diagnostics by how likely they are to be the
// upstream origin of cascading failures elsewhere.
package rootcause

import (
	"sort"
	"strings"

	"tserr/internal/depgraph"
	"tserr/internal/diagnostic"
)

// DefaultLimit caps the candidate list after sorting
const DefaultLimit = 10

// Candidate pairs a diagnostic with the evidence that put it on the list
type Candidate struct {
	Diagnostic *diagnostic.Diagnostic `json:"diagnostic"`
	Dependents int                    `json:"dependents"`
	Score      int                    `json:"score"`
}

// Identifier selects and ranks root-cause candidates using the dependency
// graph. Errors in heavily-depended-upon files are more likely root causes
// than leaf-file errors of equal severity.
type Identifier struct {
	// Limit caps the returned list; values below 1 use DefaultLimit
	Limit int
}

// NewIdentifier creates an identifier with the given cap
func NewIdentifier(limit int) *Identifier {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Identifier{Limit: limit}
}

// Identify returns the ranked, capped candidate list. A diagnostic qualifies
// when its severity is high/critical, its category signals an exported-surface
// problem, its message mentions an export, or its file has at least one
// dependent.
func (id *Identifier) Identify(diags []*diagnostic.Diagnostic, graph *depgraph.Graph) []Candidate {
	var candidates []Candidate

	for _, d := range diags {
		dependents := graph.DependentsCount(d.File)
		if !qualifies(d, dependents) {
			continue
		}
		candidates = append(candidates, Candidate{
			Diagnostic: d,
			Dependents: dependents,
			Score:      d.Severity.Weight()*1000 + dependents,
		})
	}

	// severity weight descending, then dependents descending; stable so equal
	// candidates keep input order
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].Diagnostic.Severity.Weight(), candidates[j].Diagnostic.Severity.Weight()
		if si != sj {
			return si > sj
		}
		return candidates[i].Dependents > candidates[j].Dependents
	})

	if len(candidates) > id.Limit {
		candidates = candidates[:id.Limit]
	}
	return candidates
}

func qualifies(d *diagnostic.Diagnostic, dependents int) bool {
	switch d.Severity {
	case diagnostic.SeverityCritical, diagnostic.SeverityHigh:
		return true
	}
	switch d.Category {
	case diagnostic.CategoryTypeMismatch, diagnostic.CategoryMissingProperty, diagnostic.CategoryInterfaceError:
		return true
	}
	if strings.Contains(strings.ToLower(d.Message), "exported") {
		return true
	}
	return dependents > 0
}
