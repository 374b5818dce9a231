// Package risk scans source text and syntax trees for risky constructs the
// compiler has not (yet) flagged.
package risk

// Level is the risk level of a finding
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Weight returns the contribution weight used by the per-file risk score
func (l Level) Weight() float64 {
	switch l {
	case LevelHigh:
		return 1.0
	case LevelMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Finding is one statically detected risky construct. Not derived from
// compiler diagnostics.
type Finding struct {
	File         string  `json:"file"`
	Line         int     `json:"line"`   // 1-based
	Column       int     `json:"column"` // 1-based
	Pattern      string  `json:"pattern"`
	Level        Level   `json:"level"`
	Context      string  `json:"context"`
	SuggestedFix string  `json:"suggestedFix"`
	Confidence   float64 `json:"confidence"` // [0,1], capped at 0.95
}

// FileReport aggregates the findings for one file
type FileReport struct {
	File      string    `json:"file"`
	Findings  []Finding `json:"findings"`
	RiskScore float64   `json:"riskScore"`
}

// Score computes the occurrence-weighted average of level-weight × confidence
// across the findings.
func Score(findings []Finding) float64 {
	if len(findings) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range findings {
		total += f.Level.Weight() * f.Confidence
	}
	return total / float64(len(findings))
}
