package pattern

import (
	"regexp"
	"strings"
)

// Placeholder tokens substituted into normalized messages. They survive
// regexp.QuoteMeta unchanged, which is what regex derivation relies on.
const (
	idPlaceholder   = "__ID__"
	numPlaceholder  = "__NUM__"
	pathPlaceholder = "__PATH__"
)

var (
	quotedRe = regexp.MustCompile(`'[^']*'|"[^"]*"`)
	pathRe   = regexp.MustCompile(`(?:/[\w.@-]+){2,}|[A-Za-z]:\\[\w\\.@-]+`)
	numberRe = regexp.MustCompile(`\d+`)
)

// Regex fragments the placeholders expand to when a detection regex is
// derived from a normalized signature.
const (
	idFragment   = `['"][\w\-./@ ]*['"]`
	numFragment  = `\d+`
	pathFragment = `(?:(?:/[\w.@-]+)+|[A-Za-z]:\\[\w\\.@-]+)`
)

// Normalize collapses the variable parts of a diagnostic message so that
// structurally identical messages normalize to the same string. Quoted
// identifiers are collapsed first so paths and numbers inside quotes do not
// leak into the other passes.
func Normalize(message string) string {
	s := quotedRe.ReplaceAllString(message, idPlaceholder)
	s = pathRe.ReplaceAllString(s, pathPlaceholder)
	s = numberRe.ReplaceAllString(s, numPlaceholder)
	return s
}

// Signature builds the cluster key from a normalized message and the TS code.
// Two diagnostics share a cluster iff their signatures are equal.
func Signature(normalized, code string) string {
	return normalized + "|TS" + code
}

// DeriveRegex turns a normalized message into a detection regex that matches
// any concrete message with the same shape.
func DeriveRegex(normalized string) string {
	escaped := regexp.QuoteMeta(normalized)
	escaped = strings.ReplaceAll(escaped, idPlaceholder, idFragment)
	escaped = strings.ReplaceAll(escaped, pathPlaceholder, pathFragment)
	escaped = strings.ReplaceAll(escaped, numPlaceholder, numFragment)
	return escaped
}
