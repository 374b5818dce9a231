// Package diagnostic defines the structured diagnostic model and the
// parsing/classification pipeline that turns raw compiler output into it.
package diagnostic

import "fmt"

// Severity is the urgency assigned to a diagnostic
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns the ordering weight used by root-cause ranking
// (critical=3, high=2, medium=1, low=0).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Category is the semantic kind of a diagnostic
type Category string

const (
	CategoryTypeMismatch      Category = "type-mismatch"
	CategoryMissingProperty   Category = "missing-property"
	CategoryImplicitAny       Category = "implicit-any"
	CategoryUnusedVariable    Category = "unused-variable"
	CategoryNullUndefined     Category = "null-undefined"
	CategoryModuleNotFound    Category = "module-not-found"
	CategorySyntaxError       Category = "syntax-error"
	CategoryInterfaceError    Category = "interface-error"
	CategoryTypeArgument      Category = "type-argument"
	CategoryCircularReference Category = "circular-reference"
	CategoryOther             Category = "other"
)

// Categories lists every category in a stable order. Exhaustive switches over
// Category are checked against this list in tests.
func Categories() []Category {
	return []Category{
		CategoryTypeMismatch,
		CategoryMissingProperty,
		CategoryImplicitAny,
		CategoryUnusedVariable,
		CategoryNullUndefined,
		CategoryModuleNotFound,
		CategorySyntaxError,
		CategoryInterfaceError,
		CategoryTypeArgument,
		CategoryCircularReference,
		CategoryOther,
	}
}

// Diagnostic is one compiler-reported problem. Immutable once created;
// identity is (file, line, column, code).
type Diagnostic struct {
	File         string   `json:"file"`
	Line         int      `json:"line"`   // 1-based
	Column       int      `json:"column"` // 1-based
	Code         string   `json:"code"`   // numeric TS code, e.g. "2322"
	Message      string   `json:"message"`
	Category     Category `json:"category"`
	Severity     Severity `json:"severity"`
	RelatedTypes []string `json:"relatedTypes,omitempty"`
	Context      string   `json:"context,omitempty"`
}

// Key returns the identity key file:line:col:code
func (d *Diagnostic) Key() string {
	return fmt.Sprintf("%s:%d:%d:%s", d.File, d.Line, d.Column, d.Code)
}
