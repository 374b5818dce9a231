// Package pattern clusters diagnostics with structurally similar messages
// into named, reusable patterns.
package pattern

import (
	"tserr/internal/diagnostic"
)

// ErrorPattern is a cluster of diagnostics sharing a normalized signature.
// Patterns are rebuilt each run; persistence belongs to the storage
// collaborator.
type ErrorPattern struct {
	Name           string                   `json:"name"`
	Signature      string                   `json:"signature"`
	DetectionRegex string                   `json:"detectionRegex"`
	Code           string                   `json:"code"`
	Category       diagnostic.Category      `json:"category"`
	Severity       diagnostic.Severity      `json:"severity"`
	Occurrences    int                      `json:"occurrences"`
	AffectedFiles  []string                 `json:"affectedFiles"`
	Examples       []*diagnostic.Diagnostic `json:"examples,omitempty"`
	SuggestedFix   string                   `json:"suggestedFix,omitempty"`
	AutoFixable    bool                     `json:"autoFixable"`
}
