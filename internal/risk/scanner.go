package risk

import (
	"context"
	"log/slog"
	"os"
	"strings"

	tserrors "tserr/internal/errors"
	"tserr/internal/tsast"
)

// maxConfidence caps every boost; no finding is ever reported as certain
const maxConfidence = 0.95

// historyBoost is added when the file already has compiler history for one of
// the pattern's related TS codes.
const historyBoost = 0.15

// HistoryProvider supplies historical diagnostic-code frequency per file.
// The storage collaborator implements it; a nil provider disables boosting.
type HistoryProvider interface {
	CodeFrequency(file string) map[string]int
}

// Scanner checks files against the risk catalog
type Scanner struct {
	patterns []Pattern
	history  HistoryProvider
	parser   *tsast.Parser
	logger   *slog.Logger
}

// NewScanner creates a scanner over the given catalog. Scanners are not safe
// for concurrent use: the engine creates one per worker.
func NewScanner(patterns []Pattern, history HistoryProvider, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		patterns: patterns,
		history:  history,
		parser:   tsast.NewParser(),
		logger:   logger,
	}
}

// ScanFile reads and scans a single file. Unreadable files return a warning
// and no findings.
func (s *Scanner) ScanFile(ctx context.Context, path string) ([]Finding, []tserrors.RunWarning) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, []tserrors.RunWarning{
			tserrors.Warn(tserrors.StageRisk, path, tserrors.New(tserrors.FileUnreadable, "reading "+path, err)),
		}
	}
	return s.ScanSource(ctx, path, source)
}

// ScanSource scans source bytes. The regex pass walks lines (skipping
// comments); the AST pass runs when tree-sitter is available and the file
// parses. Findings come back in line order.
func (s *Scanner) ScanSource(ctx context.Context, path string, source []byte) ([]Finding, []tserrors.RunWarning) {
	var warnings []tserrors.RunWarning

	findings := s.regexScan(path, source)

	astFindings, err := s.astScan(ctx, path, source)
	if err != nil {
		warnings = append(warnings, tserrors.Warn(tserrors.StageRisk, path, err))
	}
	findings = append(findings, astFindings...)

	freq := s.codeFrequency(path)
	for i := range findings {
		findings[i].Confidence = boostForHistory(findings[i], freq, s.patterns)
	}

	return findings, warnings
}

// Report scans a file and wraps the findings with the per-file risk score
func (s *Scanner) Report(ctx context.Context, path string) (FileReport, []tserrors.RunWarning) {
	findings, warnings := s.ScanFile(ctx, path)
	return FileReport{
		File:      path,
		Findings:  findings,
		RiskScore: Score(findings),
	}, warnings
}

// regexScan runs every regex pattern over each non-comment line
func (s *Scanner) regexScan(path string, source []byte) []Finding {
	var findings []Finding

	st := lexState{}
	for lineNo, line := range strings.Split(string(source), "\n") {
		var code string
		code, st = stripComments(line, st)

		for _, p := range s.patterns {
			if p.re == nil {
				continue
			}
			// suppression-comment patterns match the raw line; everything
			// else sees only the uncommented portion
			subject := code
			if p.MatchComments {
				subject = line
			}
			loc := p.re.FindStringIndex(subject)
			if loc == nil {
				continue
			}
			findings = append(findings, Finding{
				File:         path,
				Line:         lineNo + 1,
				Column:       loc[0] + 1,
				Pattern:      p.Name,
				Level:        p.Level,
				Context:      strings.TrimSpace(line),
				SuggestedFix: p.SuggestedFix,
				Confidence:   p.BaseConfidence,
			})
		}
	}
	return findings
}

// lexState carries the lexer state that survives line breaks: block comments
// and template literals. Plain string literals cannot span lines, so they are
// tracked locally inside stripComments.
type lexState struct {
	inBlock    bool
	inTemplate bool
}

// stripComments blanks out the commented portion of a line. A "//" or "/*"
// inside a string or template literal is content, not a comment start.
// Blanking (rather than removing) keeps columns stable for the regex pass.
func stripComments(line string, st lexState) (string, lexState) {
	var b strings.Builder
	b.Grow(len(line))

	var quote byte // ' or " while inside a plain string literal
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case st.inBlock:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				st.inBlock = false
				b.WriteString("  ")
				i += 2
				continue
			}
			b.WriteByte(' ')
			i++
		case st.inTemplate:
			if c == '\\' && i+1 < len(line) {
				b.WriteString(line[i : i+2])
				i += 2
				continue
			}
			if c == '`' {
				st.inTemplate = false
			}
			b.WriteByte(c)
			i++
		case quote != 0:
			if c == '\\' && i+1 < len(line) {
				b.WriteString(line[i : i+2])
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
			i++
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
			i++
		case c == '`':
			st.inTemplate = true
			b.WriteByte(c)
			i++
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			for ; i < len(line); i++ {
				b.WriteByte(' ')
			}
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			st.inBlock = true
			b.WriteString("  ")
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), st
}

func (s *Scanner) codeFrequency(path string) map[string]int {
	if s.history == nil {
		return nil
	}
	return s.history.CodeFrequency(path)
}

// boostForHistory raises a finding's confidence when the file has historical
// diagnostics with one of the pattern's related TS codes. The cap holds no
// matter how many boosts apply.
func boostForHistory(f Finding, freq map[string]int, patterns []Pattern) float64 {
	conf := f.Confidence
	if len(freq) > 0 {
		for _, p := range patterns {
			if p.Name != f.Pattern {
				continue
			}
			for _, code := range p.RelatedCodes {
				if freq[code] > 0 {
					conf += historyBoost
					break
				}
			}
			break
		}
	}
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf
}
