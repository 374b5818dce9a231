package depgraph

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	tserrors "tserr/internal/errors"
)

var (
	// import ... from '...' / import '...' / export ... from '...'
	importFromRe = regexp.MustCompile(`(?m)^\s*(?:import|export)\b[^'"\n]*from\s+['"]([^'"]+)['"]`)
	bareImportRe = regexp.MustCompile(`(?m)^\s*import\s+['"]([^'"]+)['"]`)
	requireRe    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	exportDeclRe = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:abstract\s+)?(?:interface|class|type|enum|function|const|let|var)\s+([A-Za-z_$][\w$]*)`)
)

// Builder constructs the dependency graph from the files carrying
// diagnostics. Each file is read and scanned once; the graph is rebuilt
// fully per run.
type Builder struct {
	// Parallelism bounds concurrent file reads; values below 1 mean serial
	Parallelism int

	logger *slog.Logger
}

// NewBuilder creates a graph builder
func NewBuilder(parallelism int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Parallelism: parallelism, logger: logger}
}

// fileScan is the per-file extraction result, merged into the graph after
// all workers finish.
type fileScan struct {
	file    string
	imports []string
	exports []string
}

// Build scans the given files and returns the graph plus warnings for files
// that could not be read. Unreadable files become empty nodes. Per-file work
// runs in parallel; merging is single-threaded after the barrier, so the
// result does not depend on worker scheduling.
func (b *Builder) Build(ctx context.Context, files []string) (*Graph, []tserrors.RunWarning, error) {
	g := NewGraph()
	for _, f := range files {
		g.AddNode(f)
	}

	var (
		mu       sync.Mutex
		scans    = make(map[string]fileScan, len(files))
		warnings []tserrors.RunWarning
	)

	eg, ctx := errgroup.WithContext(ctx)
	if b.Parallelism > 1 {
		eg.SetLimit(b.Parallelism)
	} else {
		eg.SetLimit(1)
	}

	for _, file := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scan, err := b.scanFile(file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, tserrors.Warn(tserrors.StageGraph, file, err))
				return nil
			}
			scans[file] = scan
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, tserrors.New(tserrors.ScanCancelled, "dependency graph build aborted", err)
	}

	// deterministic merge order
	for _, file := range files {
		scan, ok := scans[file]
		if !ok {
			continue
		}
		g.SetExports(file, scan.exports)
		for _, spec := range scan.imports {
			if target, ok := resolveImport(file, spec); ok {
				g.AddEdge(file, target)
			}
		}
	}

	return g, warnings, nil
}

func (b *Builder) scanFile(file string) (fileScan, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return fileScan{}, tserrors.New(tserrors.FileUnreadable, "reading "+file, err)
	}
	return fileScan{
		file:    file,
		imports: extractImports(data),
		exports: extractExports(data),
	}, nil
}

// extractImports pulls module specifiers from import/export-from/require
// statements. Textual extraction is deliberate: it works on files the
// compiler itself failed to parse.
func extractImports(source []byte) []string {
	var specs []string
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{importFromRe, bareImportRe, requireRe} {
		for _, m := range re.FindAllSubmatch(source, -1) {
			spec := string(m[1])
			if !seen[spec] {
				seen[spec] = true
				specs = append(specs, spec)
			}
		}
	}
	return specs
}

// extractExports pulls exported declaration names
func extractExports(source []byte) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range exportDeclRe.FindAllSubmatch(source, -1) {
		name := string(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// resolveImport resolves a relative import specifier against the importing
// file's directory, probing for .ts/.tsx extensions and index files when the
// specifier has no extension. Package imports (no leading dot) resolve to
// nothing: the graph tracks project files only.
func resolveImport(fromFile, spec string) (string, bool) {
	if len(spec) == 0 || spec[0] != '.' {
		return "", false
	}

	base := filepath.Join(filepath.Dir(fromFile), spec)

	candidates := []string{base}
	if ext := filepath.Ext(base); ext != ".ts" && ext != ".tsx" {
		candidates = []string{
			base + ".ts",
			base + ".tsx",
			filepath.Join(base, "index.ts"),
			filepath.Join(base, "index.tsx"),
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
