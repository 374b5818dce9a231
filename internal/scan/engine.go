package scan

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tserr/internal/depgraph"
	"tserr/internal/diagnostic"
	tserrors "tserr/internal/errors"
	"tserr/internal/pattern"
	"tserr/internal/priority"
	"tserr/internal/risk"
	"tserr/internal/rootcause"
)

// CompilerRunner supplies raw compiler output. Implemented by the compiler
// package; faked in tests.
type CompilerRunner interface {
	Run(ctx context.Context) (string, error)
}

// Store is the storage collaborator boundary. The engine requires only
// key-lookup and bulk-upsert semantics; every call is best-effort.
type Store interface {
	KnownKeys() (map[string]struct{}, error)
	CodeFrequency(file string) map[string]int
	RecordDiagnostics(newDiags, recurring []*diagnostic.Diagnostic) error
	RecordPatterns(patterns []*pattern.ErrorPattern) error
	RecordScan(result Result) error
}

// Options configures one engine instance. All caches and configuration live
// on the engine; there is no package-level state.
type Options struct {
	PatternThreshold    int
	MaxExamples         int
	SimilarityThreshold float64
	RootCauseLimit      int
	ContextLines        int
	Parallelism         int
	RiskEnabled         bool
	RiskCatalogPath     string
}

// Engine runs the full analysis pipeline: parse, classify, annotate,
// partition, cluster, graph, rank, risk-scan, persist.
type Engine struct {
	opts     Options
	compiler CompilerRunner
	store    Store
	logger   *slog.Logger

	parser      *diagnostic.Parser
	extractor   *diagnostic.ContextExtractor
	clusterer   *pattern.Clusterer
	graph       *depgraph.Builder
	rootcause   *rootcause.Identifier
	ranker      *priority.Ranker
	riskCatalog []risk.Pattern
	riskWarn    []tserrors.RunWarning
}

// NewEngine wires an engine from its collaborators. store may be nil, in
// which case every run reports persistence as skipped.
func NewEngine(opts Options, compilerRunner CompilerRunner, store Store, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 4
	}

	e := &Engine{
		opts:      opts,
		compiler:  compilerRunner,
		store:     store,
		logger:    logger,
		parser:    diagnostic.NewParser(nil),
		extractor: diagnostic.NewContextExtractor(opts.ContextLines),
		graph:     depgraph.NewBuilder(opts.Parallelism, logger),
		rootcause: rootcause.NewIdentifier(opts.RootCauseLimit),
		ranker:    priority.NewRanker(),
	}

	e.clusterer = pattern.NewClusterer(opts.PatternThreshold, opts.MaxExamples, logger)
	e.clusterer.SimilarityThreshold = opts.SimilarityThreshold

	if opts.RiskEnabled {
		catalog, warnings, err := risk.LoadCatalog(opts.RiskCatalogPath)
		if err != nil {
			return nil, err
		}
		e.riskCatalog = catalog
		e.riskWarn = warnings
	}

	return e, nil
}

// Run executes one scan. Deep runs re-process every diagnostic; incremental
// runs record only diagnostics not present in the previously known key set.
// Cancellation discards partial results entirely.
func (e *Engine) Run(ctx context.Context, deep bool) (*Analysis, error) {
	started := time.Now()

	output, err := e.compiler.Run(ctx)
	if err != nil {
		return nil, err
	}

	diags := e.parser.ParseString(output)
	e.logger.Info("compiler output parsed", "diagnostics", len(diags))

	analysis := &Analysis{Diagnostics: diags}
	analysis.Warnings = append(analysis.Warnings, e.riskWarn...)

	analysis.Warnings = append(analysis.Warnings, e.extractor.Annotate(diags)...)

	known, persistenceOK := e.knownKeys(analysis)
	newDiags, recurring := Partition(diags, known)

	patterns, clusterWarnings := e.clusterer.Cluster(diags)
	analysis.Patterns = patterns
	analysis.Warnings = append(analysis.Warnings, clusterWarnings...)

	files := affectedFiles(diags)
	graph, graphWarnings, err := e.graph.Build(ctx, files)
	if err != nil {
		return nil, err
	}
	analysis.graph = graph
	analysis.Warnings = append(analysis.Warnings, graphWarnings...)

	analysis.RootCauses = e.rootcause.Identify(diags, graph)
	analysis.FixOrder = e.ranker.Rank(diags)

	if e.opts.RiskEnabled {
		reports, riskWarnings, err := e.riskScan(ctx, files)
		if err != nil {
			return nil, err
		}
		analysis.RiskReports = reports
		analysis.Warnings = append(analysis.Warnings, riskWarnings...)
	}

	result := Result{
		ID:        NewResultID(),
		StartedAt: started,
		Duration:  time.Since(started),
		Deep:      deep,
		New:       len(newDiags),
		Recurring: len(recurring),
	}
	tally(&result, diags)

	if persistenceOK {
		persistenceOK = e.persist(analysis, &result, newDiags, recurring, deep)
	}
	result.PersistenceSkipped = !persistenceOK
	analysis.Result = result

	e.logger.Info("scan complete",
		"total", result.Total,
		"new", result.New,
		"recurring", result.Recurring,
		"patterns", len(patterns),
		"duration", result.Duration.String())

	return analysis, nil
}

// knownKeys asks storage for the previously seen identity keys. A storage
// failure degrades to a full in-memory run with persistence marked skipped.
func (e *Engine) knownKeys(analysis *Analysis) (map[string]struct{}, bool) {
	if e.store == nil {
		return nil, false
	}
	known, err := e.store.KnownKeys()
	if err != nil {
		analysis.Warnings = append(analysis.Warnings,
			tserrors.Warn(tserrors.StagePersistence, "", tserrors.New(tserrors.StorageUnavailable, "loading known diagnostic keys", err)))
		return nil, false
	}
	return known, true
}

// persist writes the run's records. Failures are warnings; the in-memory
// analysis is already complete at this point.
func (e *Engine) persist(analysis *Analysis, result *Result, newDiags, recurring []*diagnostic.Diagnostic, deep bool) bool {
	ok := true
	record := func(what string, err error) {
		if err != nil {
			ok = false
			analysis.Warnings = append(analysis.Warnings,
				tserrors.Warn(tserrors.StagePersistence, "", tserrors.New(tserrors.StorageUnavailable, what, err)))
		}
	}

	if deep {
		// deep scans re-store everything regardless of novelty
		record("recording diagnostics", e.store.RecordDiagnostics(analysis.Diagnostics, nil))
	} else {
		record("recording diagnostics", e.store.RecordDiagnostics(newDiags, recurring))
	}
	record("recording patterns", e.store.RecordPatterns(analysis.Patterns))
	record("recording scan result", e.store.RecordScan(*result))
	return ok
}

// riskScan runs the preventative scanner over the affected files. Workers
// each own a scanner (the tree-sitter parser is not concurrency-safe);
// cancellation aborts between files and discards everything.
func (e *Engine) riskScan(ctx context.Context, files []string) ([]risk.FileReport, []tserrors.RunWarning, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var history risk.HistoryProvider
	if e.store != nil {
		history = e.store
	}

	type fileResult struct {
		report   risk.FileReport
		warnings []tserrors.RunWarning
	}

	results := make(map[string]fileResult, len(files))
	fileCh := make(chan string)

	eg, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex

	workers := e.opts.Parallelism
	if workers > len(files) {
		workers = len(files)
	}
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			scanner := risk.NewScanner(e.riskCatalog, history, e.logger)
			for file := range fileCh {
				if err := ctx.Err(); err != nil {
					return err
				}
				report, warnings := scanner.Report(ctx, file)
				mu.Lock()
				results[file] = fileResult{report: report, warnings: warnings}
				mu.Unlock()
			}
			return nil
		})
	}

	eg.Go(func() error {
		defer close(fileCh)
		for _, f := range files {
			select {
			case fileCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, tserrors.New(tserrors.ScanCancelled, "risk scan aborted", err)
	}

	// deterministic aggregation after the barrier
	var reports []risk.FileReport
	var warnings []tserrors.RunWarning
	for _, f := range files {
		r, ok := results[f]
		if !ok {
			continue
		}
		warnings = append(warnings, r.warnings...)
		if len(r.report.Findings) > 0 {
			reports = append(reports, r.report)
		}
	}
	return reports, warnings, nil
}

// affectedFiles returns the unique files carrying diagnostics, sorted
func affectedFiles(diags []*diagnostic.Diagnostic) []string {
	seen := make(map[string]bool)
	var files []string
	for _, d := range diags {
		if !seen[d.File] {
			seen[d.File] = true
			files = append(files, d.File)
		}
	}
	sort.Strings(files)
	return files
}
