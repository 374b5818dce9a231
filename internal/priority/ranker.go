// Package priority computes the recommended fix order over all diagnostics.
package priority

import (
	"sort"
	"strings"

	"tserr/internal/diagnostic"
)

// Ranked is a diagnostic with its computed priority score
type Ranked struct {
	Diagnostic *diagnostic.Diagnostic `json:"diagnostic"`
	Score      int                    `json:"score"`
}

// Ranker computes per-diagnostic priority scores and a total fix order.
// The order is stable and reproducible: score descending, then file path
// ascending, then line ascending, independent of input ordering.
type Ranker struct{}

// NewRanker creates a ranker
func NewRanker() *Ranker {
	return &Ranker{}
}

// blockingKeywords mark messages describing problems that block progress on
// everything downstream of them.
var blockingKeywords = []string{"cannot find", "undefined", "missing"}

const blockingBonus = 15

// Score computes the priority score for one diagnostic
func (r *Ranker) Score(d *diagnostic.Diagnostic) int {
	score := severityBase(d)
	score += categoryBonus(d.Category)

	lower := strings.ToLower(d.Message)
	for _, kw := range blockingKeywords {
		if strings.Contains(lower, kw) {
			score += blockingBonus
			break
		}
	}
	return score
}

// Rank returns all diagnostics in fix order
func (r *Ranker) Rank(diags []*diagnostic.Diagnostic) []Ranked {
	ranked := make([]Ranked, 0, len(diags))
	for _, d := range diags {
		ranked = append(ranked, Ranked{Diagnostic: d, Score: r.Score(d)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Diagnostic.File != ranked[j].Diagnostic.File {
			return ranked[i].Diagnostic.File < ranked[j].Diagnostic.File
		}
		if ranked[i].Diagnostic.Line != ranked[j].Diagnostic.Line {
			return ranked[i].Diagnostic.Line < ranked[j].Diagnostic.Line
		}
		return ranked[i].Diagnostic.Column < ranked[j].Diagnostic.Column
	})
	return ranked
}

// severityBase maps severity to its score base. High-severity null/undefined
// problems score above other high diagnostics because they surface at runtime.
func severityBase(d *diagnostic.Diagnostic) int {
	switch d.Severity {
	case diagnostic.SeverityCritical:
		return 100
	case diagnostic.SeverityHigh:
		if d.Category == diagnostic.CategoryNullUndefined {
			return 75
		}
		return 60
	case diagnostic.SeverityMedium:
		if d.Category == diagnostic.CategoryTypeMismatch {
			return 40
		}
		return 30
	default:
		return 10
	}
}

// categoryBonus adds weight for categories that block compilation entirely
func categoryBonus(c diagnostic.Category) int {
	switch c {
	case diagnostic.CategorySyntaxError:
		return 25
	case diagnostic.CategoryModuleNotFound:
		return 20
	case diagnostic.CategoryCircularReference:
		return 10
	default:
		return 0
	}
}
