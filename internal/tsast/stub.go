//go:build !cgo

// Package tsast wraps tree-sitter parsing of TypeScript/TSX sources. This
// build has no tree-sitter (it requires CGO); callers check IsAvailable and
// fall back to regex-only analysis.
package tsast

import (
	"path/filepath"
	"strings"
)

// Parser is a placeholder for non-CGO builds. It parses nothing; code that
// would call Parse is compiled out alongside it.
type Parser struct{}

// NewParser returns the placeholder parser
func NewParser() *Parser {
	return &Parser{}
}

// IsAvailable reports whether syntax-tree parsing is available in this build
func IsAvailable() bool {
	return false
}

// SupportedFile reports whether the path has a parseable extension
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	default:
		return false
	}
}
