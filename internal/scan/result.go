// Package scan orchestrates the analysis pipeline and the incremental
// diff against previously seen diagnostics.
package scan

import (
	"time"

	"github.com/google/uuid"

	"tserr/internal/depgraph"
	"tserr/internal/diagnostic"
	tserrors "tserr/internal/errors"
	"tserr/internal/pattern"
	"tserr/internal/priority"
	"tserr/internal/risk"
	"tserr/internal/rootcause"
)

// Result holds the aggregate statistics for one run. Created at run end,
// handed to storage, never mutated afterward.
type Result struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`

	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`

	Deep      bool `json:"deep"`
	New       int  `json:"newErrorsFound"`
	Recurring int  `json:"recurringErrors"`

	// PersistenceSkipped notes that storage was unavailable and the run's
	// records were not written.
	PersistenceSkipped bool `json:"persistenceSkipped,omitempty"`
}

// NewResultID returns a fresh run identifier
func NewResultID() string {
	return uuid.NewString()
}

// Analysis is the full structured output of one run: plain data,
// serializable as JSON, renderable as a text report.
type Analysis struct {
	Result      Result                   `json:"result"`
	Diagnostics []*diagnostic.Diagnostic `json:"diagnostics"`
	Patterns    []*pattern.ErrorPattern  `json:"patterns"`
	RootCauses  []rootcause.Candidate    `json:"rootCauses"`
	FixOrder    []priority.Ranked        `json:"fixOrder"`
	RiskReports []risk.FileReport        `json:"riskReports"`
	Warnings    []tserrors.RunWarning    `json:"warnings,omitempty"`

	graph *depgraph.Graph
}

// Graph exposes the dependency graph built during the run
func (a *Analysis) Graph() *depgraph.Graph {
	return a.graph
}

func tally(result *Result, diags []*diagnostic.Diagnostic) {
	result.Total = len(diags)
	for _, d := range diags {
		switch d.Severity {
		case diagnostic.SeverityCritical:
			result.Critical++
		case diagnostic.SeverityHigh:
			result.High++
		case diagnostic.SeverityMedium:
			result.Medium++
		case diagnostic.SeverityLow:
			result.Low++
		}
	}
}
