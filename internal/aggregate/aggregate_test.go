package aggregate

import (
	"testing"

	"github.com/shaiso/Argus/internal/domain"
)

func finding(task string, sev domain.Severity, cat domain.Category, file string, line int, msg string) domain.Finding {
	return domain.Finding{
		SourceTaskID: task,
		Severity:     sev,
		Category:     cat,
		File:         file,
		Line:         line,
		Message:      msg,
	}
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil)
	if len(res.Findings) != 0 || res.Malformed != 0 {
		t.Errorf("empty input should yield empty result, got %+v", res)
	}
}

func TestAggregate_DedupHigherSeverityWins(t *testing.T) {
	res := Aggregate([]domain.Finding{
		finding("lint", domain.SeverityLow, domain.CategorySecurity, "auth.go", 42, "weak check"),
		finding("scanner", domain.SeverityCritical, domain.CategorySecurity, "auth.go", 42, "SQL injection"),
	})

	if len(res.Findings) != 1 {
		t.Fatalf("expected 1 finding after dedup, got %d", len(res.Findings))
	}
	if res.Findings[0].Severity != domain.SeverityCritical {
		t.Errorf("higher severity should win, got %s", res.Findings[0].Severity)
	}
	if res.Findings[0].SourceTaskID != "scanner" {
		t.Errorf("winning finding should replace entirely, got source %s", res.Findings[0].SourceTaskID)
	}
}

func TestAggregate_DedupEqualSeverityFirstWins(t *testing.T) {
	res := Aggregate([]domain.Finding{
		finding("a", domain.SeverityHigh, domain.CategoryPerformance, "db.go", 7, "first"),
		finding("b", domain.SeverityHigh, domain.CategoryPerformance, "db.go", 7, "second"),
	})

	if len(res.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(res.Findings))
	}
	if res.Findings[0].Message != "first" {
		t.Errorf("first-seen should win on equal severity, got %q", res.Findings[0].Message)
	}
}

func TestAggregate_DifferentCategoriesNotDeduped(t *testing.T) {
	// Та же позиция, разные категории — разные ключи
	res := Aggregate([]domain.Finding{
		finding("a", domain.SeverityHigh, domain.CategorySecurity, "x.go", 1, "sec"),
		finding("b", domain.SeverityHigh, domain.CategoryStyle, "x.go", 1, "style"),
	})

	if len(res.Findings) != 2 {
		t.Errorf("different categories should not dedup, got %d", len(res.Findings))
	}
}

func TestAggregate_MalformedCountedNotFatal(t *testing.T) {
	res := Aggregate([]domain.Finding{
		finding("a", domain.SeverityHigh, domain.CategorySecurity, "x.go", 1, "valid"),
		{SourceTaskID: "b", Severity: domain.SeverityHigh, Category: domain.CategoryStyle, Message: "no file"},
		{SourceTaskID: "c", Severity: "catastrophic", Category: domain.CategoryStyle, File: "y.go", Message: "bad severity"},
		{SourceTaskID: "d", Severity: domain.SeverityLow, Category: domain.CategoryStyle, File: "z.go"},
	})

	if len(res.Findings) != 1 {
		t.Errorf("expected 1 valid finding, got %d", len(res.Findings))
	}
	if res.Malformed != 3 {
		t.Errorf("expected 3 malformed, got %d", res.Malformed)
	}
}

func TestAggregate_SortedByScoreDesc(t *testing.T) {
	// style/low = 1, security/critical = 10000, performance/high = 600
	res := Aggregate([]domain.Finding{
		finding("a", domain.SeverityLow, domain.CategoryStyle, "a.go", 1, "style nit"),
		finding("b", domain.SeverityCritical, domain.CategorySecurity, "b.go", 2, "injection"),
		finding("c", domain.SeverityHigh, domain.CategoryPerformance, "c.go", 3, "n+1 query"),
	})

	if len(res.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(res.Findings))
	}

	want := []string{"b", "c", "a"}
	for i, id := range want {
		if res.Findings[i].SourceTaskID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, res.Findings[i].SourceTaskID)
		}
	}

	// Порядок невозрастающий по score
	for i := 1; i < len(res.Findings); i++ {
		if res.Findings[i].Score() > res.Findings[i-1].Score() {
			t.Errorf("findings not sorted by score at %d", i)
		}
	}
}

func TestAggregate_TieBreakByFileLine(t *testing.T) {
	// Одинаковый score — упорядочиваем по file, затем line
	res := Aggregate([]domain.Finding{
		finding("a", domain.SeverityMedium, domain.CategoryStyle, "z.go", 5, "m"),
		finding("b", domain.SeverityMedium, domain.CategoryStyle, "a.go", 9, "m"),
		finding("c", domain.SeverityMedium, domain.CategoryStyle, "a.go", 2, "m"),
	})

	want := []struct {
		file string
		line int
	}{{"a.go", 2}, {"a.go", 9}, {"z.go", 5}}

	for i, w := range want {
		f := res.Findings[i]
		if f.File != w.file || f.Line != w.line {
			t.Errorf("position %d: expected %s:%d, got %s:%d", i, w.file, w.line, f.File, f.Line)
		}
	}
}

func TestAggregate_UnknownCategoryScored(t *testing.T) {
	// Неизвестная категория не отбрасывается — множитель 1
	res := Aggregate([]domain.Finding{
		finding("a", domain.SeverityHigh, "exotic", "x.go", 1, "m"),
	})

	if len(res.Findings) != 1 {
		t.Fatalf("unknown category should be kept, got %d findings", len(res.Findings))
	}
	if got := res.Findings[0].Score(); got != domain.SeverityHigh.Weight() {
		t.Errorf("unknown category should score with multiplier 1, got %d", got)
	}
}
