//go:build cgo

package risk

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	tserrors "tserr/internal/errors"
	"tserr/internal/tsast"
)

// unsafeAssertionBoost is added when a cast targets a non-primitive type
const unsafeAssertionBoost = 0.1

// primitiveTargets are assertion targets considered benign
var primitiveTargets = map[string]bool{
	"string": true, "number": true, "boolean": true, "bigint": true,
	"symbol": true, "undefined": true, "null": true, "unknown": true,
	"const": true,
}

// safeGlobals are identifiers whose member accesses are never flagged as
// potential null references.
var safeGlobals = map[string]bool{
	"console": true, "Math": true, "JSON": true, "Object": true,
	"Array": true, "String": true, "Number": true, "Boolean": true,
	"Promise": true, "Date": true, "RegExp": true, "Error": true,
	"window": true, "document": true, "process": true, "globalThis": true,
	"this": true,
}

// astScan runs the syntax-tree pass over the catalog's AST patterns. The file
// not parsing is a per-file warning, not a fatal failure.
func (s *Scanner) astScan(ctx context.Context, path string, source []byte) ([]Finding, error) {
	if !tsast.SupportedFile(path) {
		return nil, nil
	}

	root, err := s.parser.Parse(ctx, path, source)
	if err != nil {
		return nil, tserrors.New(tserrors.ParseFailed, "parsing "+path, err)
	}

	lines := strings.Split(string(source), "\n")
	lineAt := func(n *sitter.Node) string {
		row := int(n.StartPoint().Row)
		if row < len(lines) {
			return strings.TrimSpace(lines[row])
		}
		return ""
	}

	byKind := make(map[string]Pattern)
	for _, p := range s.patterns {
		if p.ASTKind != "" {
			byKind[p.ASTKind] = p
		}
	}

	var findings []Finding
	add := func(p Pattern, n *sitter.Node, confidence float64) {
		findings = append(findings, Finding{
			File:         path,
			Line:         int(n.StartPoint().Row) + 1,
			Column:       int(n.StartPoint().Column) + 1,
			Pattern:      p.Name,
			Level:        p.Level,
			Context:      lineAt(n),
			SuggestedFix: p.SuggestedFix,
			Confidence:   confidence,
		})
	}

	tsast.Walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "non_null_expression":
			if p, ok := byKind[astNonNullAssertion]; ok {
				add(p, n, p.BaseConfidence)
			}
		case "as_expression":
			if p, ok := byKind[astUnsafeAssertion]; ok {
				if conf, flag := assertionConfidence(p, n, source); flag {
					add(p, n, conf)
				}
			}
		case "member_expression":
			if p, ok := byKind[astNullReference]; ok {
				if obj, flag := nullRefTarget(n, source); flag && !isGuarded(n, obj, source) {
					add(p, n, p.BaseConfidence)
				}
			}
		}
		return true
	})

	return findings, nil
}

// assertionConfidence decides whether an as-expression is worth flagging and
// with what confidence. Casting to a primitive (or to unknown/const) is
// considered benign; casting to a named type raises confidence.
func assertionConfidence(p Pattern, n *sitter.Node, source []byte) (float64, bool) {
	if n.NamedChildCount() < 2 {
		return 0, false
	}
	target := strings.TrimSpace(n.NamedChild(1).Content(source))
	if primitiveTargets[target] {
		return 0, false
	}

	conf := p.BaseConfidence
	if target != "" && target != "any" {
		conf += unsafeAssertionBoost
	}
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf, true
}

// nullRefTarget returns the accessed object's name when the member access is
// a candidate null-reference site: a plain identifier receiver, not optional
// chaining, not a well-known global.
func nullRefTarget(n *sitter.Node, source []byte) (string, bool) {
	obj := n.ChildByFieldName("object")
	if obj == nil || obj.Type() != "identifier" {
		return "", false
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "optional_chain" {
			return "", false
		}
	}

	name := obj.Content(source)
	if safeGlobals[name] {
		return "", false
	}
	return name, true
}

// isGuarded walks up the parent chain looking for an enclosing expression
// that narrows the object before the access: an if/ternary condition or the
// left side of && / a comparison mentioning the object.
func isGuarded(n *sitter.Node, obj string, source []byte) bool {
	word := regexp.MustCompile(`\b` + regexp.QuoteMeta(obj) + `\b`)

	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "if_statement", "while_statement":
			if cond := p.ChildByFieldName("condition"); cond != nil && word.MatchString(cond.Content(source)) {
				return true
			}
		case "ternary_expression":
			if cond := p.ChildByFieldName("condition"); cond != nil && word.MatchString(cond.Content(source)) {
				return true
			}
		case "binary_expression":
			op := p.ChildByFieldName("operator")
			if op == nil {
				continue
			}
			switch op.Type() {
			case "&&", "===", "!==", "==", "!=":
				if left := p.ChildByFieldName("left"); left != nil && word.MatchString(left.Content(source)) {
					return true
				}
			}
		}
	}
	return false
}
