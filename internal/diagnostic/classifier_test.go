package diagnostic

import (
	"reflect"
	"testing"
)

func TestCategorize(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		message  string
		expected Category
	}{
		{
			name:     "type mismatch",
			message:  "Type 'string' is not assignable to type 'number'",
			expected: CategoryTypeMismatch,
		},
		{
			name:     "missing property",
			message:  "Property 'name' does not exist on type 'User'",
			expected: CategoryMissingProperty,
		},
		{
			name:     "implicit any",
			message:  "Parameter 'x' implicitly has an 'any' type",
			expected: CategoryImplicitAny,
		},
		{
			name:     "unused variable",
			message:  "'unused' is declared but its value is never read",
			expected: CategoryUnusedVariable,
		},
		{
			name:     "possibly undefined",
			message:  "Object is possibly 'undefined'",
			expected: CategoryNullUndefined,
		},
		{
			name:     "possibly null",
			message:  "Object is possibly 'null'",
			expected: CategoryNullUndefined,
		},
		{
			name:     "module not found",
			message:  "Cannot find module './config' or its corresponding type declarations",
			expected: CategoryModuleNotFound,
		},
		{
			name:     "module wins over type keywords",
			message:  "Cannot find module './types'. Type declarations are missing",
			expected: CategoryModuleNotFound,
		},
		{
			name:     "unexpected token",
			message:  "Unexpected token. Did you mean `{'}'}` or `&rbrace;`?",
			expected: CategorySyntaxError,
		},
		{
			name:     "expected token",
			message:  "Expected 1 arguments, but got 2",
			expected: CategorySyntaxError,
		},
		{
			name:     "interface error",
			message:  "Interface 'Admin' incorrectly extends interface 'User'",
			expected: CategoryInterfaceError,
		},
		{
			name:     "type argument",
			message:  "Type argument expected",
			expected: CategoryTypeArgument,
		},
		{
			name:     "circular reference",
			message:  "'Node' circularly references itself",
			expected: CategoryCircularReference,
		},
		{
			name:     "unmatched",
			message:  "Something completely different",
			expected: CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Categorize(tt.message)
			if got != tt.expected {
				t.Errorf("Categorize(%q) = %s, want %s", tt.message, got, tt.expected)
			}
			// categorization is pure: repeat calls agree
			if again := c.Categorize(tt.message); again != got {
				t.Errorf("Categorize is not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestDetermineSeverity(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		category Category
		message  string
		expected Severity
	}{
		{"syntax is critical", CategorySyntaxError, "Unexpected token", SeverityCritical},
		{"module not found is critical", CategoryModuleNotFound, "Cannot find module './config'", SeverityCritical},
		{"null-undefined is high", CategoryNullUndefined, "Object is possibly 'undefined'", SeverityHigh},
		{
			"type mismatch mentioning undefined is high",
			CategoryTypeMismatch,
			"Type 'undefined' is not assignable to type 'string'",
			SeverityHigh,
		},
		{
			"plain type mismatch is medium",
			CategoryTypeMismatch,
			"Type 'string' is not assignable to type 'number'",
			SeverityMedium,
		},
		{"missing property is medium", CategoryMissingProperty, "Property 'x' does not exist on type 'Y'", SeverityMedium},
		{"implicit any is medium", CategoryImplicitAny, "Parameter 'x' implicitly has an 'any' type", SeverityMedium},
		{"unused variable is low", CategoryUnusedVariable, "'x' is declared but its value is never read", SeverityLow},
		{"other defaults to medium", CategoryOther, "Something else", SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.DetermineSeverity(tt.category, tt.message); got != tt.expected {
				t.Errorf("DetermineSeverity(%s, %q) = %s, want %s", tt.category, tt.message, got, tt.expected)
			}
		})
	}
}

func TestSeverityCoversAllCategories(t *testing.T) {
	c := NewClassifier()
	for _, cat := range Categories() {
		sev := c.DetermineSeverity(cat, "message without keywords")
		switch sev {
		case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		default:
			t.Errorf("category %s produced invalid severity %q", cat, sev)
		}
	}
}

func TestExtractRelatedTypes(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected []string
	}{
		{
			name:     "two types in order",
			message:  "Type 'string' is not assignable to type 'number'",
			expected: []string{"string", "number"},
		},
		{
			name:     "duplicates removed",
			message:  "Type 'User' is not assignable to type 'User'",
			expected: []string{"User"},
		},
		{
			name:     "no quoted tokens",
			message:  "Something went wrong",
			expected: nil,
		},
		{
			name:     "order of appearance preserved",
			message:  "Property 'b' does not exist on type 'A'. Did you mean 'c'?",
			expected: []string{"b", "A", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRelatedTypes(tt.message)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractRelatedTypes(%q) = %v, want %v", tt.message, got, tt.expected)
			}
		})
	}
}

func TestSeverityWeight(t *testing.T) {
	if SeverityCritical.Weight() <= SeverityHigh.Weight() {
		t.Error("critical must outweigh high")
	}
	if SeverityHigh.Weight() <= SeverityMedium.Weight() {
		t.Error("high must outweigh medium")
	}
	if SeverityMedium.Weight() <= SeverityLow.Weight() {
		t.Error("medium must outweigh low")
	}
}
