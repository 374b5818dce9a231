package diagnostic

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// diagnosticLine matches the tsc diagnostic shape:
//
//	<file>(<line>,<col>): error TS<code>: <message>
var diagnosticLine = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): error TS(\d+): (.+)$`)

// Parser turns raw compiler text output into structured diagnostics.
// Lines that do not match the diagnostic shape are skipped.
type Parser struct {
	classifier *Classifier
}

// NewParser creates a parser that classifies each diagnostic as it is parsed
func NewParser(classifier *Classifier) *Parser {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Parser{classifier: classifier}
}

// Parse reads compiler output and returns structured, classified diagnostics
// in the order they appear.
func (p *Parser) Parse(r io.Reader) ([]*Diagnostic, error) {
	var diags []*Diagnostic

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if d, ok := p.parseLine(scanner.Text()); ok {
			diags = append(diags, d)
		}
	}
	if err := scanner.Err(); err != nil {
		return diags, err
	}
	return diags, nil
}

// ParseString parses compiler output held in a string
func (p *Parser) ParseString(output string) []*Diagnostic {
	diags, _ := p.Parse(strings.NewReader(output))
	return diags
}

func (p *Parser) parseLine(line string) (*Diagnostic, bool) {
	m := diagnosticLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return nil, false
	}

	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	colNo, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false
	}

	message := m[5]
	category := p.classifier.Categorize(message)

	return &Diagnostic{
		File:         m[1],
		Line:         lineNo,
		Column:       colNo,
		Code:         m[4],
		Message:      message,
		Category:     category,
		Severity:     p.classifier.DetermineSeverity(category, message),
		RelatedTypes: ExtractRelatedTypes(message),
	}, true
}
