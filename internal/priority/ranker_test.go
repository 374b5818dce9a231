package priority

import (
	"math/rand"
	"reflect"
	"testing"

	"tserr/internal/diagnostic"
)

func diag(file string, line int, sev diagnostic.Severity, cat diagnostic.Category, message string) *diagnostic.Diagnostic {
	return &diagnostic.Diagnostic{
		File:     file,
		Line:     line,
		Column:   1,
		Code:     "0000",
		Message:  message,
		Category: cat,
		Severity: sev,
	}
}

func TestSeverityOrdering(t *testing.T) {
	r := NewRanker()

	critical := r.Score(diag("a.ts", 1, diagnostic.SeverityCritical, diagnostic.CategorySyntaxError, "Unexpected token"))
	high := r.Score(diag("a.ts", 1, diagnostic.SeverityHigh, diagnostic.CategoryNullUndefined, "Object is possibly 'undefined'"))
	medium := r.Score(diag("a.ts", 1, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'a' is not assignable to type 'b'"))
	low := r.Score(diag("a.ts", 1, diagnostic.SeverityLow, diagnostic.CategoryUnusedVariable, "'x' is declared but its value is never read"))

	if !(critical > high && high > medium && medium > low) {
		t.Errorf("severity ordering violated: critical=%d high=%d medium=%d low=%d", critical, high, medium, low)
	}
}

func TestBlockingKeywordBonus(t *testing.T) {
	r := NewRanker()

	with := r.Score(diag("a.ts", 1, diagnostic.SeverityMedium, diagnostic.CategoryOther, "Value is missing here"))
	without := r.Score(diag("a.ts", 1, diagnostic.SeverityMedium, diagnostic.CategoryOther, "Value is wrong here"))

	if with <= without {
		t.Errorf("blocking keyword must add a bonus: with=%d without=%d", with, without)
	}
}

func TestCategoryBonusForCompilationBlockers(t *testing.T) {
	r := NewRanker()

	syntax := r.Score(diag("a.ts", 1, diagnostic.SeverityCritical, diagnostic.CategorySyntaxError, "Unexpected token"))
	plainCritical := r.Score(diag("a.ts", 1, diagnostic.SeverityCritical, diagnostic.CategoryOther, "some fatal problem"))

	if syntax <= plainCritical {
		t.Errorf("syntax errors must outrank other critical diagnostics: %d vs %d", syntax, plainCritical)
	}
}

func TestRankOrderIndependentOfInputOrder(t *testing.T) {
	diags := []*diagnostic.Diagnostic{
		diag("src/b.ts", 10, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'a' is not assignable to type 'b'"),
		diag("src/a.ts", 5, diagnostic.SeverityCritical, diagnostic.CategorySyntaxError, "Unexpected token"),
		diag("src/a.ts", 2, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'c' is not assignable to type 'd'"),
		diag("src/c.ts", 1, diagnostic.SeverityLow, diagnostic.CategoryUnusedVariable, "'x' is declared but its value is never read"),
		diag("src/b.ts", 3, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'e' is not assignable to type 'f'"),
	}

	r := NewRanker()
	baseline := r.Rank(diags)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]*diagnostic.Diagnostic, len(diags))
		copy(shuffled, diags)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		if got := r.Rank(shuffled); !reflect.DeepEqual(got, baseline) {
			t.Fatalf("fix order changed under input reordering (iteration %d)", i)
		}
	}
}

func TestTieBreakFileThenLine(t *testing.T) {
	diags := []*diagnostic.Diagnostic{
		diag("src/z.ts", 1, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'a' is not assignable to type 'b'"),
		diag("src/a.ts", 9, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'a' is not assignable to type 'b'"),
		diag("src/a.ts", 2, diagnostic.SeverityMedium, diagnostic.CategoryTypeMismatch, "Type 'a' is not assignable to type 'b'"),
	}

	r := NewRanker()
	ranked := r.Rank(diags)

	if ranked[0].Diagnostic.File != "src/a.ts" || ranked[0].Diagnostic.Line != 2 {
		t.Errorf("first should be src/a.ts:2, got %s:%d", ranked[0].Diagnostic.File, ranked[0].Diagnostic.Line)
	}
	if ranked[1].Diagnostic.File != "src/a.ts" || ranked[1].Diagnostic.Line != 9 {
		t.Errorf("second should be src/a.ts:9, got %s:%d", ranked[1].Diagnostic.File, ranked[1].Diagnostic.Line)
	}
	if ranked[2].Diagnostic.File != "src/z.ts" {
		t.Errorf("third should be src/z.ts, got %s", ranked[2].Diagnostic.File)
	}
}
