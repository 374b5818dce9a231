//go:build !cgo

package risk

import "context"

// astScan is a no-op without CGO: tree-sitter is unavailable, so only the
// regex pass runs. Patterns that are AST-only simply produce no findings.
func (s *Scanner) astScan(ctx context.Context, path string, source []byte) ([]Finding, error) {
	return nil, nil
}
