package diagnostic

import (
	"regexp"
	"strings"
)

// categoryRule maps a message predicate to a category. Rules are evaluated in
// order; the first match wins, so rule order is part of the contract.
type categoryRule struct {
	category Category
	match    func(message string) bool
}

func contains(substr string) func(string) bool {
	return func(message string) bool {
		return strings.Contains(message, substr)
	}
}

func containsAny(substrs ...string) func(string) bool {
	return func(message string) bool {
		for _, s := range substrs {
			if strings.Contains(message, s) {
				return true
			}
		}
		return false
	}
}

// Classifier assigns categories and severities to diagnostic messages.
// It holds its rule table as a field rather than package state so callers can
// construct and own an instance.
type Classifier struct {
	rules []categoryRule
}

// NewClassifier creates a classifier with the canonical rule ordering.
// "Cannot find module" is checked before the type rules on purpose: a message
// mentioning both resolves to module-not-found.
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []categoryRule{
			{CategoryModuleNotFound, contains("Cannot find module")},
			{CategorySyntaxError, containsAny("Unexpected token", "Expected")},
			{CategoryCircularReference, contains("circularly references itself")},
			{CategoryInterfaceError, contains("incorrectly extends interface")},
			{CategoryTypeArgument, contains("Type argument expected")},
			{CategoryNullUndefined, containsAny("possibly 'undefined'", "possibly 'null'")},
			{CategoryTypeMismatch, contains("not assignable to type")},
			{CategoryMissingProperty, contains("does not exist on type")},
			{CategoryImplicitAny, contains("implicitly has an 'any' type")},
			{CategoryUnusedVariable, contains("declared but its value is never read")},
		},
	}
}

// Categorize returns the category for a raw diagnostic message
func (c *Classifier) Categorize(message string) Category {
	for _, rule := range c.rules {
		if rule.match(message) {
			return rule.category
		}
	}
	return CategoryOther
}

// DetermineSeverity assigns a severity given the category and message.
// Blocking categories (syntax, unresolved modules) are critical; type errors
// involving null/undefined are high because they tend to surface at runtime.
func (c *Classifier) DetermineSeverity(category Category, message string) Severity {
	switch category {
	case CategorySyntaxError, CategoryModuleNotFound:
		return SeverityCritical
	case CategoryNullUndefined:
		return SeverityHigh
	case CategoryTypeMismatch:
		if mentionsNullish(message) {
			return SeverityHigh
		}
		return SeverityMedium
	case CategoryMissingProperty, CategoryImplicitAny:
		return SeverityMedium
	case CategoryUnusedVariable:
		return SeverityLow
	case CategoryInterfaceError, CategoryTypeArgument, CategoryCircularReference, CategoryOther:
		return SeverityMedium
	default:
		return SeverityMedium
	}
}

func mentionsNullish(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "null") || strings.Contains(lower, "undefined")
}

var quotedToken = regexp.MustCompile(`'([^']+)'`)

// ExtractRelatedTypes pulls every single-quoted token from a message in order
// of appearance, deduplicated.
func ExtractRelatedTypes(message string) []string {
	matches := quotedToken.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	types := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		types = append(types, m[1])
	}
	return types
}
