package scan

import "tserr/internal/diagnostic"

// SuggestionRequest is the payload prepared for the external fix-suggestion
// collaborator. The engine only builds it; it never calls the collaborator.
type SuggestionRequest struct {
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Column       int      `json:"column"`
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	Category     string   `json:"category"`
	Severity     string   `json:"severity"`
	RelatedTypes []string `json:"relatedTypes,omitempty"`
	Context      string   `json:"context,omitempty"`
}

// BuildSuggestionRequest prepares the diagnostic+context payload for one
// diagnostic.
func BuildSuggestionRequest(d *diagnostic.Diagnostic) SuggestionRequest {
	return SuggestionRequest{
		File:         d.File,
		Line:         d.Line,
		Column:       d.Column,
		Code:         d.Code,
		Message:      d.Message,
		Category:     string(d.Category),
		Severity:     string(d.Severity),
		RelatedTypes: d.RelatedTypes,
		Context:      d.Context,
	}
}
