package risk

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	tserrors "tserr/internal/errors"
)

// AST pattern kinds understood by the syntax-tree pass
const (
	astNonNullAssertion = "non-null-assertion"
	astUnsafeAssertion  = "unsafe-assertion"
	astNullReference    = "null-reference"
)

// Pattern describes one entry of the risk catalog. A pattern is checked by
// regex, by an AST predicate, or both; the catalog is data, not control flow,
// so extending it does not touch the scanner.
type Pattern struct {
	Name           string   `yaml:"name"`
	Level          Level    `yaml:"level"`
	DetectionRegex string   `yaml:"detectionRegex,omitempty"`
	ASTKind        string   `yaml:"astKind,omitempty"`
	SuggestedFix   string   `yaml:"suggestedFix"`
	BaseConfidence float64  `yaml:"baseConfidence"`
	RelatedCodes   []string `yaml:"relatedCodes,omitempty"`
	// MatchComments lets a pattern match inside comments; used by the
	// suppression-comment pattern, which only ever appears in comments
	MatchComments bool `yaml:"matchComments,omitempty"`

	re *regexp.Regexp
}

// BuiltinCatalog returns the fixed set of risk patterns shipped with tserr
func BuiltinCatalog() []Pattern {
	return []Pattern{
		{
			Name:           "explicit-any",
			Level:          LevelLow,
			DetectionRegex: `:\s*any\b`,
			SuggestedFix:   "Replace 'any' with a concrete type or 'unknown'",
			BaseConfidence: 0.7,
			RelatedCodes:   []string{"7005", "7006"},
		},
		{
			Name:           "ts-suppression-comment",
			Level:          LevelMedium,
			DetectionRegex: `@ts-(?:ignore|nocheck|expect-error)`,
			SuggestedFix:   "Fix the underlying diagnostic instead of suppressing it",
			BaseConfidence: 0.7,
			MatchComments:  true,
		},
		{
			Name:           "loose-equality",
			Level:          LevelLow,
			DetectionRegex: `[^=!<>]==[^=]|[^=!<>]!=[^=]`,
			SuggestedFix:   "Use === / !== to avoid coercing comparisons",
			BaseConfidence: 0.7,
		},
		{
			Name:           "empty-catch",
			Level:          LevelMedium,
			DetectionRegex: `catch\s*(?:\([^)]*\))?\s*\{\s*\}`,
			SuggestedFix:   "Handle or at least log the caught error",
			BaseConfidence: 0.7,
		},
		{
			Name:           "floating-promise",
			Level:          LevelMedium,
			DetectionRegex: `\.then\s*\([^)]*\)\s*;`,
			SuggestedFix:   "Chain a .catch() or await the promise",
			BaseConfidence: 0.6,
		},
		{
			Name:           "eval-usage",
			Level:          LevelHigh,
			DetectionRegex: `\beval\s*\(`,
			SuggestedFix:   "Remove eval; use data structures or explicit dispatch",
			BaseConfidence: 0.9,
		},
		{
			Name:           "non-null-assertion",
			Level:          LevelMedium,
			ASTKind:        astNonNullAssertion,
			SuggestedFix:   "Replace the ! assertion with a runtime guard",
			BaseConfidence: 0.65,
			RelatedCodes:   []string{"2531", "2532"},
		},
		{
			Name:           "unsafe-type-assertion",
			Level:          LevelMedium,
			ASTKind:        astUnsafeAssertion,
			SuggestedFix:   "Validate the value instead of asserting its type",
			BaseConfidence: 0.6,
			RelatedCodes:   []string{"2322", "2352"},
		},
		{
			Name:           "potential-null-reference",
			Level:          LevelHigh,
			ASTKind:        astNullReference,
			SuggestedFix:   "Guard the object against null/undefined before the access",
			BaseConfidence: 0.6,
			RelatedCodes:   []string{"2531", "2532", "2533"},
		},
	}
}

// LoadCatalog reads extra patterns from a YAML file and merges them over the
// builtin catalog (same name overrides). Patterns whose regex fails to
// compile are skipped with a warning, never fatally.
func LoadCatalog(path string) ([]Pattern, []tserrors.RunWarning, error) {
	patterns := BuiltinCatalog()
	if path == "" {
		return compileCatalog(patterns)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return compileCatalog(patterns)
		}
		return nil, nil, tserrors.New(tserrors.FileUnreadable, "reading risk catalog "+path, err)
	}

	var extra []Pattern
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, nil, tserrors.New(tserrors.ConfigInvalid, "parsing risk catalog "+path, err)
	}

	byName := make(map[string]int, len(patterns))
	for i, p := range patterns {
		byName[p.Name] = i
	}
	for _, p := range extra {
		if i, ok := byName[p.Name]; ok {
			patterns[i] = p
		} else {
			patterns = append(patterns, p)
		}
	}
	return compileCatalog(patterns)
}

// compileCatalog compiles detection regexes, dropping (with a warning) any
// pattern whose regex does not compile.
func compileCatalog(patterns []Pattern) ([]Pattern, []tserrors.RunWarning, error) {
	var (
		out      []Pattern
		warnings []tserrors.RunWarning
	)
	for _, p := range patterns {
		if p.DetectionRegex != "" {
			re, err := regexp.Compile(p.DetectionRegex)
			if err != nil {
				warnings = append(warnings, tserrors.Warn(tserrors.StageRisk, "",
					tserrors.New(tserrors.PatternInvalid,
						fmt.Sprintf("risk pattern %q regex does not compile", p.Name), err)))
				continue
			}
			p.re = re
		}
		if p.BaseConfidence <= 0 {
			p.BaseConfidence = 0.6
		}
		out = append(out, p)
	}
	return out, warnings, nil
}
