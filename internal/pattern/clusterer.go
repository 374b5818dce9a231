package pattern

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/cespare/xxhash/v2"
	edlib "github.com/hbollon/go-edlib"

	"tserr/internal/diagnostic"
	tserrors "tserr/internal/errors"
)

// Clusterer groups diagnostics by normalized message signature.
type Clusterer struct {
	// MinOccurrences is the cluster size threshold; smaller groups are dropped
	MinOccurrences int
	// MaxExamples caps the example diagnostics kept per pattern
	MaxExamples int
	// SimilarityThreshold, when > 0, merges same-code clusters whose
	// signatures are at least this similar (0..1). Zero disables merging.
	SimilarityThreshold float64

	logger *slog.Logger
}

// NewClusterer creates a clusterer with the given threshold. Thresholds below
// 2 are raised to 2: a "cluster" of one diagnostic is not a pattern.
func NewClusterer(minOccurrences, maxExamples int, logger *slog.Logger) *Clusterer {
	if minOccurrences < 2 {
		minOccurrences = 2
	}
	if maxExamples <= 0 {
		maxExamples = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Clusterer{
		MinOccurrences: minOccurrences,
		MaxExamples:    maxExamples,
		logger:         logger,
	}
}

// group accumulates the diagnostics behind one signature. Insertion order is
// tracked so the whole pipeline stays deterministic.
type group struct {
	signature  string
	normalized string
	code       string
	members    []*diagnostic.Diagnostic
	firstSeen  int
}

// Cluster groups the diagnostics and returns patterns sorted by occurrence
// count descending, ties broken by first-seen order. Running it twice on the
// same input yields identical output.
func (c *Clusterer) Cluster(diags []*diagnostic.Diagnostic) ([]*ErrorPattern, []tserrors.RunWarning) {
	groups := make(map[string]*group)
	var order []*group

	for i, d := range diags {
		normalized := Normalize(d.Message)
		sig := Signature(normalized, d.Code)
		g, ok := groups[sig]
		if !ok {
			g = &group{
				signature:  sig,
				normalized: normalized,
				code:       d.Code,
				firstSeen:  i,
			}
			groups[sig] = g
			order = append(order, g)
		}
		g.members = append(g.members, d)
	}

	if c.SimilarityThreshold > 0 {
		order = c.mergeSimilar(order)
	}

	var patterns []*ErrorPattern
	var warnings []tserrors.RunWarning
	for _, g := range order {
		if len(g.members) < c.MinOccurrences {
			continue
		}
		p, err := c.buildPattern(g)
		if err != nil {
			warnings = append(warnings, tserrors.Warn(tserrors.StageCluster, "", err))
			continue
		}
		patterns = append(patterns, p)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Occurrences > patterns[j].Occurrences
	})
	return patterns, warnings
}

// mergeSimilar folds clusters with the same TS code and near-identical
// signatures into the earliest-seen cluster. Comparison walks in first-seen
// order so the merge is deterministic.
func (c *Clusterer) mergeSimilar(order []*group) []*group {
	var merged []*group
	for _, g := range order {
		target := -1
		for i, kept := range merged {
			if kept.code != g.code {
				continue
			}
			sim, err := edlib.StringsSimilarity(kept.normalized, g.normalized, edlib.Levenshtein)
			if err != nil {
				continue
			}
			if float64(sim) >= c.SimilarityThreshold {
				target = i
				break
			}
		}
		if target >= 0 {
			merged[target].members = append(merged[target].members, g.members...)
			continue
		}
		merged = append(merged, g)
	}
	return merged
}

func (c *Clusterer) buildPattern(g *group) (*ErrorPattern, error) {
	detection := DeriveRegex(g.normalized)
	if _, err := regexp.Compile(detection); err != nil {
		return nil, tserrors.New(tserrors.PatternInvalid,
			fmt.Sprintf("derived regex for signature %q does not compile", g.signature), err)
	}

	representative := g.members[0]

	fileSet := make(map[string]bool)
	for _, d := range g.members {
		fileSet[d.File] = true
	}
	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)

	examples := g.members
	if len(examples) > c.MaxExamples {
		examples = examples[:c.MaxExamples]
	}

	advice := adviceFor(g.code, representative.Category)

	return &ErrorPattern{
		Name:           fmt.Sprintf("ts%s-%08x", g.code, uint32(xxhash.Sum64String(g.signature))),
		Signature:      g.signature,
		DetectionRegex: detection,
		Code:           g.code,
		Category:       representative.Category,
		Severity:       representative.Severity,
		Occurrences:    len(g.members),
		AffectedFiles:  files,
		Examples:       examples,
		SuggestedFix:   advice.suggestion,
		AutoFixable:    advice.autoFixable,
	}, nil
}
