package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tserr/internal/diagnostic"
	tserrors "tserr/internal/errors"
	"tserr/internal/logging"
	"tserr/internal/pattern"
)

// fakeCompiler replays canned tsc output.
type fakeCompiler struct {
	output string
	err    error
}

func (f *fakeCompiler) Run(ctx context.Context) (string, error) {
	return f.output, f.err
}

// memStore is an in-memory Store used to exercise the incremental diff
// without sqlite.
type memStore struct {
	keys      map[string]struct{}
	scans     []Result
	patterns  int
	failKnown bool
	failWrite bool
}

func newMemStore() *memStore {
	return &memStore{keys: make(map[string]struct{})}
}

func (m *memStore) KnownKeys() (map[string]struct{}, error) {
	if m.failKnown {
		return nil, fmt.Errorf("database locked")
	}
	out := make(map[string]struct{}, len(m.keys))
	for k := range m.keys {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *memStore) CodeFrequency(file string) map[string]int { return nil }

func (m *memStore) RecordDiagnostics(newDiags, recurring []*diagnostic.Diagnostic) error {
	if m.failWrite {
		return fmt.Errorf("disk full")
	}
	for _, d := range newDiags {
		m.keys[d.Key()] = struct{}{}
	}
	return nil
}

func (m *memStore) RecordPatterns(patterns []*pattern.ErrorPattern) error {
	if m.failWrite {
		return fmt.Errorf("disk full")
	}
	m.patterns += len(patterns)
	return nil
}

func (m *memStore) RecordScan(result Result) error {
	if m.failWrite {
		return fmt.Errorf("disk full")
	}
	m.scans = append(m.scans, result)
	return nil
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testEngine(t *testing.T, compiler CompilerRunner, store Store) *Engine {
	t.Helper()
	e, err := NewEngine(Options{
		PatternThreshold: 2,
		ContextLines:     2,
		Parallelism:      2,
	}, compiler, store, logging.NewDiscard())
	require.NoError(t, err)
	return e
}

func TestEngineIncrementalSecondRunFindsNothingNew(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.ts", "const x: number = 'one';\nconst y: number = 'two';\n")

	compiler := &fakeCompiler{output: fmt.Sprintf(
		"%s(1,7): error TS2322: Type 'string' is not assignable to type 'number'.\n"+
			"%s(2,7): error TS2322: Type 'string' is not assignable to type 'number'.\n", a, a)}
	store := newMemStore()
	engine := testEngine(t, compiler, store)

	first, err := engine.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, first.Result.Total)
	require.Equal(t, 2, first.Result.New)
	require.Equal(t, 0, first.Result.Recurring)
	require.False(t, first.Result.PersistenceSkipped)
	require.Len(t, first.Patterns, 1, "two identical messages should cluster")

	second, err := engine.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 0, second.Result.New)
	require.Equal(t, 2, second.Result.Recurring)
	require.Len(t, store.scans, 2)
}

func TestEngineDeepRunReprocessesEverything(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.ts", "const x: number = 'one';\n")

	compiler := &fakeCompiler{output: fmt.Sprintf(
		"%s(1,7): error TS2322: Type 'string' is not assignable to type 'number'.\n", a)}
	store := newMemStore()
	engine := testEngine(t, compiler, store)

	_, err := engine.Run(context.Background(), false)
	require.NoError(t, err)

	deep, err := engine.Run(context.Background(), true)
	require.NoError(t, err)
	require.True(t, deep.Result.Deep)
	require.Equal(t, 0, deep.Result.New, "stats still reflect the diff")
	require.Equal(t, 1, deep.Result.Recurring)
}

func TestEngineStorageFailureDegradesToFullScan(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.ts", "const x: number = 'one';\n")

	compiler := &fakeCompiler{output: fmt.Sprintf(
		"%s(1,7): error TS2322: Type 'string' is not assignable to type 'number'.\n", a)}
	store := newMemStore()
	store.failKnown = true
	engine := testEngine(t, compiler, store)

	analysis, err := engine.Run(context.Background(), false)
	require.NoError(t, err, "storage failure must not abort the run")
	require.True(t, analysis.Result.PersistenceSkipped)
	require.Equal(t, 1, analysis.Result.Total)

	found := false
	for _, w := range analysis.Warnings {
		if w.Stage == tserrors.StagePersistence {
			found = true
		}
	}
	require.True(t, found, "expected a persistence warning")
}

func TestEngineNilStoreSkipsPersistence(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.ts", "const x: number = 'one';\n")

	compiler := &fakeCompiler{output: fmt.Sprintf(
		"%s(1,7): error TS2322: Type 'string' is not assignable to type 'number'.\n", a)}
	engine := testEngine(t, compiler, nil)

	analysis, err := engine.Run(context.Background(), false)
	require.NoError(t, err)
	require.True(t, analysis.Result.PersistenceSkipped)
	require.Equal(t, 1, analysis.Result.New, "without history everything is new")
}

func TestEngineCompilerFailurePropagates(t *testing.T) {
	compiler := &fakeCompiler{err: tserrors.Newf(tserrors.CompilerStartFailed, "npx not found")}
	engine := testEngine(t, compiler, newMemStore())

	_, err := engine.Run(context.Background(), false)
	require.Error(t, err)
	require.True(t, tserrors.HasCode(err, tserrors.CompilerStartFailed))
}

func TestEngineBuildsGraphAndRootCauses(t *testing.T) {
	dir := t.TempDir()
	lib := writeFixture(t, dir, "lib.ts", "export interface User { name: string }\n")
	app := writeFixture(t, dir, "app.ts", "import { User } from './lib';\nconst u: User = {};\n")

	compiler := &fakeCompiler{output: fmt.Sprintf(
		"%s(1,18): error TS2322: Type '{}' is not assignable to type 'User'.\n"+
			"%s(2,7): error TS2739: Type '{}' is missing the following properties from type 'User': name.\n", lib, app)}
	engine := testEngine(t, compiler, newMemStore())

	analysis, err := engine.Run(context.Background(), false)
	require.NoError(t, err)

	require.Contains(t, analysis.Graph().Dependents(lib), app)
	require.NotEmpty(t, analysis.RootCauses)
	// lib.ts has a dependent; it should outrank the leaf at equal severity
	require.Equal(t, lib, analysis.RootCauses[0].Diagnostic.File)
	require.Len(t, analysis.FixOrder, 2)
}
