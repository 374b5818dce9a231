package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tserr/internal/diagnostic"
	"tserr/internal/pattern"
	"tserr/internal/priority"
	"tserr/internal/risk"
	"tserr/internal/scan"
)

func sampleAnalysis() *scan.Analysis {
	d := &diagnostic.Diagnostic{
		File:     "src/app.ts",
		Line:     12,
		Column:   7,
		Code:     "2322",
		Message:  "Type 'string' is not assignable to type 'number'.",
		Category: diagnostic.CategoryTypeMismatch,
		Severity: diagnostic.SeverityMedium,
	}
	return &scan.Analysis{
		Result: scan.Result{
			ID:        scan.NewResultID(),
			StartedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			Duration:  1500 * time.Millisecond,
			Total:     1,
			Medium:    1,
			New:       1,
		},
		Diagnostics: []*diagnostic.Diagnostic{d},
		Patterns: []*pattern.ErrorPattern{{
			Name:          "ts2322-0a1b2c3d",
			Code:          "2322",
			Category:      diagnostic.CategoryTypeMismatch,
			Severity:      diagnostic.SeverityMedium,
			Occurrences:   1,
			AffectedFiles: []string{"src/app.ts"},
			SuggestedFix:  "Align the value's type with the declared type.",
		}},
		FixOrder: []priority.Ranked{{Diagnostic: d, Score: 40}},
		RiskReports: []risk.FileReport{{
			File:      "src/app.ts",
			RiskScore: 0.36,
			Findings: []risk.Finding{{
				File:       "src/app.ts",
				Line:       3,
				Column:     10,
				Pattern:    "explicit-any",
				Level:      risk.LevelMedium,
				Confidence: 0.6,
			}},
		}},
	}
}

func TestRenderTextSections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleAnalysis(), Options{}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Diagnostics: 1 total (1 new, 0 recurring)",
		"medium: 1",
		"ts2322-0a1b2c3d",
		"Suggested fix order",
		"src/app.ts:12:7 TS2322",
		"explicit-any",
		"mode:     incremental",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n---\n%s", want, out)
		}
	}
}

func TestRenderTextStoredSummary(t *testing.T) {
	// the shape 'tserr report' rebuilds from storage: run stats and
	// patterns, no per-diagnostic detail
	full := sampleAnalysis()
	stored := &scan.Analysis{Result: full.Result, Patterns: full.Patterns}

	var buf bytes.Buffer
	if err := RenderText(&buf, stored, Options{}); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Diagnostics: 1 total (1 new, 0 recurring)",
		"Patterns (1)",
		"ts2322-0a1b2c3d",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stored-scan report missing %q\n---\n%s", want, out)
		}
	}
	for _, absent := range []string{"Suggested fix order", "Likely root causes", "Preventative risk"} {
		if strings.Contains(out, absent) {
			t.Errorf("stored-scan report should omit %q\n---\n%s", absent, out)
		}
	}
}

func TestRenderTextCapsFixOrder(t *testing.T) {
	analysis := sampleAnalysis()
	d2 := *analysis.Diagnostics[0]
	d2.Line = 99
	analysis.FixOrder = append(analysis.FixOrder, priority.Ranked{Diagnostic: &d2, Score: 30})

	var buf bytes.Buffer
	if err := RenderText(&buf, analysis, Options{MaxFixOrder: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "top 1 of 2") {
		t.Errorf("expected capped header, got:\n%s", out)
	}
	if strings.Contains(out, "src/app.ts:99") {
		t.Error("second entry should be cut by MaxFixOrder")
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, sampleAnalysis(), false); err != nil {
		t.Fatal(err)
	}

	var decoded scan.Analysis
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Result.Total != 1 || len(decoded.Diagnostics) != 1 {
		t.Errorf("round trip lost data: %+v", decoded.Result)
	}
}

func TestExportPlainAndCompressed(t *testing.T) {
	dir := t.TempDir()
	analysis := sampleAnalysis()

	plain := filepath.Join(dir, "report.json")
	if err := Export(plain, analysis); err != nil {
		t.Fatalf("plain export failed: %v", err)
	}
	loaded, err := ReadExport(plain)
	if err != nil {
		t.Fatalf("plain read failed: %v", err)
	}
	if loaded.Result.ID != analysis.Result.ID {
		t.Error("plain export lost result ID")
	}

	compressed := filepath.Join(dir, "report.json.zst")
	if err := Export(compressed, analysis); err != nil {
		t.Fatalf("compressed export failed: %v", err)
	}
	loaded, err = ReadExport(compressed)
	if err != nil {
		t.Fatalf("compressed read failed: %v", err)
	}
	if loaded.Result.ID != analysis.Result.ID {
		t.Error("compressed export lost result ID")
	}
}
