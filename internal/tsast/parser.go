//go:build cgo

// Package tsast wraps tree-sitter parsing of TypeScript/TSX sources.
package tsast

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps tree-sitter for TypeScript parsing. Not safe for concurrent
// use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// IsAvailable reports whether syntax-tree parsing is available in this build
func IsAvailable() bool {
	return true
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

// Parse parses source and returns the syntax tree root. The grammar is
// selected from the file extension (.tsx gets the TSX grammar).
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*sitter.Node, error) {
	if strings.ToLower(filepath.Ext(path)) == ".tsx" {
		p.parser.SetLanguage(tsx.GetLanguage())
	} else {
		p.parser.SetLanguage(typescript.GetLanguage())
	}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree.RootNode(), nil
}

// Walk traverses the tree in pre-order, calling visit on every named node.
// Returning false from visit skips the node's children. The traversal is
// iterative so deeply nested sources cannot blow the stack.
func Walk(root *sitter.Node, visit func(n *sitter.Node) bool) {
	if root == nil {
		return
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(n) {
			continue
		}

		// push children in reverse so pre-order (and therefore line/column
		// ordering) is preserved
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
}
