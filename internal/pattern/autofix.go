package pattern

import "tserr/internal/diagnostic"

// fixAdvice is the static suggested-fix table. It is keyed by TS code and is
// intentionally a fixed, inspectable list rather than anything learned.
type fixAdvice struct {
	suggestion  string
	autoFixable bool
}

var fixAdviceByCode = map[string]fixAdvice{
	"2322": {"Align the value's type with the declared type, or widen the declaration", false},
	"2339": {"Add the missing property to the type, or narrow the receiver before access", false},
	"2304": {"Import or declare the missing identifier", false},
	"2307": {"Fix the module path or install the missing package and its @types", false},
	"2345": {"Adjust the argument to match the parameter type", false},
	"2531": {"Guard the value against null before use", true},
	"2532": {"Guard the value against undefined before use", true},
	"2551": {"Use the suggested property name from the compiler hint", true},
	"6133": {"Remove the unused declaration or prefix it with an underscore", true},
	"7005": {"Annotate the variable with an explicit type", true},
	"7006": {"Annotate the parameter with an explicit type", true},
	"1005": {"Add the missing token reported by the parser", false},
	"2430": {"Make the extending interface compatible with its base", false},
}

// adviceFor returns the suggested fix for a cluster. Codes outside the table
// fall back to generic advice keyed by category.
func adviceFor(code string, category diagnostic.Category) fixAdvice {
	if advice, ok := fixAdviceByCode[code]; ok {
		return advice
	}

	switch category {
	case diagnostic.CategoryTypeMismatch:
		return fixAdvice{suggestion: "Reconcile the source and target types"}
	case diagnostic.CategoryMissingProperty:
		return fixAdvice{suggestion: "Declare the property on the type it is accessed from"}
	case diagnostic.CategoryImplicitAny:
		return fixAdvice{suggestion: "Add an explicit type annotation"}
	case diagnostic.CategoryUnusedVariable:
		return fixAdvice{suggestion: "Delete the unused declaration", autoFixable: true}
	case diagnostic.CategoryNullUndefined:
		return fixAdvice{suggestion: "Add a null/undefined guard before the access"}
	case diagnostic.CategoryModuleNotFound:
		return fixAdvice{suggestion: "Check the import path and installed dependencies"}
	case diagnostic.CategorySyntaxError:
		return fixAdvice{suggestion: "Fix the syntax at the reported location"}
	case diagnostic.CategoryInterfaceError:
		return fixAdvice{suggestion: "Align the interface hierarchy"}
	case diagnostic.CategoryTypeArgument:
		return fixAdvice{suggestion: "Supply the expected type argument"}
	case diagnostic.CategoryCircularReference:
		return fixAdvice{suggestion: "Break the cycle with an intermediate type"}
	default:
		return fixAdvice{suggestion: "Review the compiler message"}
	}
}
