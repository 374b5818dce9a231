package storage

import (
	"testing"
	"time"

	"tserr/internal/diagnostic"
	"tserr/internal/logging"
	"tserr/internal/pattern"
	"tserr/internal/scan"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), logging.NewDiscard())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testDiag(file string, line int, code string) *diagnostic.Diagnostic {
	return &diagnostic.Diagnostic{
		File:     file,
		Line:     line,
		Column:   1,
		Code:     code,
		Message:  "Type 'string' is not assignable to type 'number'.",
		Category: diagnostic.CategoryTypeMismatch,
		Severity: diagnostic.SeverityMedium,
	}
}

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, logging.NewDiscard())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	db.Close()

	// Reopen exercises the migration path
	db, err = Open(dir, logging.NewDiscard())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	keys, err := db.KnownKeys()
	if err != nil {
		t.Fatalf("KnownKeys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("fresh database has %d keys, want 0", len(keys))
	}
}

func TestRecordDiagnosticsAndKnownKeys(t *testing.T) {
	db := openTestDB(t)

	d1 := testDiag("src/a.ts", 10, "2322")
	d2 := testDiag("src/b.ts", 20, "2339")
	if err := db.RecordDiagnostics([]*diagnostic.Diagnostic{d1, d2}, nil); err != nil {
		t.Fatalf("RecordDiagnostics failed: %v", err)
	}

	keys, err := db.KnownKeys()
	if err != nil {
		t.Fatalf("KnownKeys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	if _, ok := keys[d1.Key()]; !ok {
		t.Errorf("key %q not recorded", d1.Key())
	}
}

func TestRecordDiagnosticsBumpsRecurring(t *testing.T) {
	db := openTestDB(t)

	d := testDiag("src/a.ts", 10, "2322")
	if err := db.RecordDiagnostics([]*diagnostic.Diagnostic{d}, nil); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if err := db.RecordDiagnostics(nil, []*diagnostic.Diagnostic{d}); err != nil {
		t.Fatalf("recurring record failed: %v", err)
	}

	var occurrences int
	err := db.conn.QueryRow("SELECT occurrences FROM diagnostics WHERE key = ?", d.Key()).Scan(&occurrences)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", occurrences)
	}
}

func TestCodeFrequencyAccumulates(t *testing.T) {
	db := openTestDB(t)

	d1 := testDiag("src/a.ts", 10, "2322")
	d2 := testDiag("src/a.ts", 20, "2322")
	d3 := testDiag("src/a.ts", 30, "2339")
	if err := db.RecordDiagnostics([]*diagnostic.Diagnostic{d1, d2, d3}, nil); err != nil {
		t.Fatalf("RecordDiagnostics failed: %v", err)
	}

	freq := db.CodeFrequency("src/a.ts")
	if freq["2322"] != 2 {
		t.Errorf("freq[2322] = %d, want 2", freq["2322"])
	}
	if freq["2339"] != 1 {
		t.Errorf("freq[2339] = %d, want 1", freq["2339"])
	}
	if other := db.CodeFrequency("src/other.ts"); len(other) != 0 {
		t.Errorf("unexpected frequency for untouched file: %v", other)
	}
}

func TestRecordPatternsUpserts(t *testing.T) {
	db := openTestDB(t)

	p := &pattern.ErrorPattern{
		Name:           "ts2322-deadbeef",
		Signature:      "Type __ID__ is not assignable to type __ID__.|TS2322",
		DetectionRegex: `Type '[^']*' is not assignable`,
		Code:           "2322",
		Category:       diagnostic.CategoryTypeMismatch,
		Severity:       diagnostic.SeverityMedium,
		Occurrences:    3,
		AffectedFiles:  []string{"src/a.ts", "src/b.ts"},
		SuggestedFix:   "Align the value's type with the declared type.",
	}
	if err := db.RecordPatterns([]*pattern.ErrorPattern{p}); err != nil {
		t.Fatalf("RecordPatterns failed: %v", err)
	}

	p.Occurrences = 5
	if err := db.RecordPatterns([]*pattern.ErrorPattern{p}); err != nil {
		t.Fatalf("second RecordPatterns failed: %v", err)
	}

	stored, err := db.Patterns()
	if err != nil {
		t.Fatalf("Patterns failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d patterns, want 1", len(stored))
	}
	if stored[0].Occurrences != 5 {
		t.Errorf("occurrences = %d, want 5 after upsert", stored[0].Occurrences)
	}
	if len(stored[0].AffectedFiles) != 2 || stored[0].AffectedFiles[0] != "src/a.ts" {
		t.Errorf("affected files did not round trip: %v", stored[0].AffectedFiles)
	}
	if stored[0].Category != diagnostic.CategoryTypeMismatch {
		t.Errorf("category = %q", stored[0].Category)
	}
}

func TestScanHistoryNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := scan.Result{
			ID:        scan.NewResultID(),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Duration:  2 * time.Second,
			Total:     i + 1,
			New:       i + 1,
		}
		if err := db.RecordScan(r); err != nil {
			t.Fatalf("RecordScan failed: %v", err)
		}
	}

	history, err := db.History(2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d results, want 2", len(history))
	}
	if history[0].Total != 3 || history[1].Total != 2 {
		t.Errorf("history not newest first: totals %d, %d", history[0].Total, history[1].Total)
	}
	if !history[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("started_at round trip lost: %v", history[0].StartedAt)
	}
}

func TestPruneScans(t *testing.T) {
	db := openTestDB(t)

	old := scan.Result{ID: scan.NewResultID(), StartedAt: time.Now().Add(-90 * 24 * time.Hour)}
	recent := scan.Result{ID: scan.NewResultID(), StartedAt: time.Now()}
	if err := db.RecordScan(old); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordScan(recent); err != nil {
		t.Fatal(err)
	}

	pruned, err := db.PruneScans(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneScans failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	history, err := db.History(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("got %d results after prune, want 1", len(history))
	}
}
