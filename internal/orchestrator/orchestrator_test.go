package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Argus/internal/analyzer"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
)

// fakeAnalyzer — analyzer с настраиваемым поведением по TaskID.
type fakeAnalyzer struct {
	results  map[string][]domain.Finding
	failures map[string]error
}

// asFunc оборачивает фейк в analyzer.Func под стратегией "fake".
func (f *fakeAnalyzer) asFunc() analyzer.Func {
	return analyzer.Func{
		Name: "fake",
		Fn: func(_ context.Context, req *analyzer.Request) ([]domain.Finding, error) {
			if err, ok := f.failures[req.TaskID]; ok {
				return nil, err
			}
			return f.results[req.TaskID], nil
		},
	}
}

func testEngine(fake *fakeAnalyzer) *Engine {
	reg := analyzer.NewRegistry()
	reg.Register(fake.asFunc())
	return New(Config{
		Analyzers:    reg,
		RetryBackoff: time.Millisecond,
	})
}

// reviewGraph строит граф:
//
//	lint(optional) ──→ security(critical) ──→ summary(optional)
//	tests(critical) ─────────────────────↗
func reviewGraph() *domain.ReviewGraph {
	return &domain.ReviewGraph{
		Name: "go-service",
		Groups: []domain.GroupDef{
			{Name: "analysis", Mode: domain.GroupModeParallel, TimeoutSec: 60},
		},
		Reviewers: []domain.ReviewerDef{
			{ID: "lint", TimeoutSec: 30, Group: "analysis", Retry: domain.RetryOptional,
				Analyzer: domain.AnalyzerDef{Strategy: "fake"}},
			{ID: "tests", TimeoutSec: 30, Group: "analysis", Retry: domain.RetryCritical,
				Analyzer: domain.AnalyzerDef{Strategy: "fake"}},
			{ID: "security", TimeoutSec: 30, Group: "analysis", Retry: domain.RetryCritical,
				DependsOn: []string{"lint"},
				Analyzer:  domain.AnalyzerDef{Strategy: "fake"}},
			{ID: "summary", TimeoutSec: 30, Group: "analysis", Retry: domain.RetryOptional,
				DependsOn: []string{"security", "tests"},
				Analyzer:  domain.AnalyzerDef{Strategy: "fake"}},
		},
	}
}

func TestRun_AllCompleted(t *testing.T) {
	fake := &fakeAnalyzer{
		results: map[string][]domain.Finding{
			"lint": {{
				SourceTaskID: "lint", Severity: domain.SeverityLow,
				Category: domain.CategoryStyle, File: "main.go", Line: 3, Message: "unused import",
			}},
			"security": {{
				SourceTaskID: "security", Severity: domain.SeverityCritical,
				Category: domain.CategorySecurity, File: "auth.go", Line: 42, Message: "SQL injection",
			}},
		},
	}

	rep, err := testEngine(fake).Run(context.Background(), Request{
		Graph:  reviewGraph(),
		Target: "/tmp/repo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Metrics.TasksCompleted != 4 {
		t.Errorf("expected 4 completed, got %d", rep.Metrics.TasksCompleted)
	}
	if rep.Metrics.TotalFindings != 2 {
		t.Errorf("expected 2 findings, got %d", rep.Metrics.TotalFindings)
	}

	// Findings отсортированы по убыванию score: security первым
	if rep.Findings[0].SourceTaskID != "security" {
		t.Errorf("expected security finding first, got %s", rep.Findings[0].SourceTaskID)
	}
}

func TestRun_CriticalFailureBlocksDependents(t *testing.T) {
	// security падает (critical) → summary блокируется
	fake := &fakeAnalyzer{
		failures: map[string]error{"security": errors.New("scanner crashed")},
	}

	rep, err := testEngine(fake).Run(context.Background(), Request{
		Graph:  reviewGraph(),
		Target: "/tmp/repo",
	})
	if err != nil {
		t.Fatalf("expected report despite failure, got error: %v", err)
	}

	if rep.Metrics.TasksFailed != 1 {
		t.Errorf("expected 1 failed, got %d", rep.Metrics.TasksFailed)
	}
	if rep.Metrics.TasksSkipped != 1 {
		t.Fatalf("expected 1 skipped, got %d", rep.Metrics.TasksSkipped)
	}

	// Отчёт называет блокировку поимённо
	if rep.Skipped[0].TaskID != "summary" || rep.Skipped[0].Reason != "blocked by security" {
		t.Errorf("expected summary blocked by security, got %+v", rep.Skipped[0])
	}

	// critical ретраится: 1 + MaxCriticalRetries попыток
	if rep.Metrics.Retries != domain.MaxCriticalRetries {
		t.Errorf("expected %d retries, got %d", domain.MaxCriticalRetries, rep.Metrics.Retries)
	}
}

func TestRun_OptionalFailureDegradesDependents(t *testing.T) {
	// lint падает (optional) → security выполняется с UpstreamDegraded
	fake := &fakeAnalyzer{
		failures: map[string]error{"lint": errors.New("linter crashed")},
	}

	eng := testEngine(fake)
	rep, err := eng.Run(context.Background(), Request{
		Graph:  reviewGraph(),
		Target: "/tmp/repo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Metrics.TasksFailed != 1 {
		t.Errorf("expected 1 failed (lint), got %d", rep.Metrics.TasksFailed)
	}
	if rep.Metrics.TasksSkipped != 0 {
		t.Errorf("optional failure should not block, got %d skipped", rep.Metrics.TasksSkipped)
	}
	if rep.Metrics.TasksCompleted != 3 {
		t.Errorf("expected 3 completed, got %d", rep.Metrics.TasksCompleted)
	}
}

func TestRun_ConfigErrorNoReport(t *testing.T) {
	g := reviewGraph()
	g.Reviewers[0].DependsOn = []string{"security"} // цикл lint↔security

	rep, err := testEngine(&fakeAnalyzer{}).Run(context.Background(), Request{
		Graph:  g,
		Target: "/tmp/repo",
	})
	if rep != nil {
		t.Error("config error must not produce a report")
	}

	var cfgErr *engine.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *engine.ConfigError, got %v", err)
	}
	if !errors.Is(err, engine.ErrCyclicDependency) {
		t.Errorf("expected cyclic dependency error, got %v", err)
	}
}

func TestRun_AllFailedStillYieldsReport(t *testing.T) {
	fake := &fakeAnalyzer{
		failures: map[string]error{
			"lint":  errors.New("boom"),
			"tests": errors.New("boom"),
		},
	}

	rep, err := testEngine(fake).Run(context.Background(), Request{
		Graph:  reviewGraph(),
		Target: "/tmp/repo",
	})
	if err != nil {
		t.Fatalf("expected report, got error: %v", err)
	}

	// lint и tests упали; security (critical tests не его зависимость)
	// выполнился деградированно, summary заблокирован tests
	if rep.Metrics.TasksFailed != 2 {
		t.Errorf("expected 2 failed, got %d", rep.Metrics.TasksFailed)
	}
	if len(rep.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(rep.Findings))
	}
	if rep.GraphName != "go-service" {
		t.Errorf("report should carry graph name, got %s", rep.GraphName)
	}
}

func TestRun_PredicateSkips(t *testing.T) {
	g := reviewGraph()
	g.Reviewers[0].Predicate = "never"

	reg := analyzer.NewRegistry()
	reg.Register((&fakeAnalyzer{}).asFunc())

	preds := engine.NewPredicateSet()
	preds.Register("never", func(string) (bool, error) { return false, nil })

	eng := New(Config{
		Analyzers:    reg,
		Predicates:   preds,
		RetryBackoff: time.Millisecond,
	})

	rep, err := eng.Run(context.Background(), Request{Graph: g, Target: "/tmp/repo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// lint пропущен предикатом; security зависит от lint —
	// пропущенная зависимость блокирует независимо от класса
	var lintSkip, secSkip bool
	for _, s := range rep.Skipped {
		switch s.TaskID {
		case "lint":
			lintSkip = s.Reason == "predicate not met"
		case "security":
			secSkip = s.Reason == "blocked by lint"
		}
	}
	if !lintSkip {
		t.Error("lint should be skipped with 'predicate not met'")
	}
	if !secSkip {
		t.Error("security should be blocked by skipped lint")
	}
}

func TestRun_DeterministicReport(t *testing.T) {
	fake := &fakeAnalyzer{
		results: map[string][]domain.Finding{
			"lint": {
				{SourceTaskID: "lint", Severity: domain.SeverityMedium,
					Category: domain.CategoryMaintainability, File: "b.go", Line: 1, Message: "m1"},
				{SourceTaskID: "lint", Severity: domain.SeverityMedium,
					Category: domain.CategoryMaintainability, File: "a.go", Line: 1, Message: "m2"},
			},
			"tests": {
				{SourceTaskID: "tests", Severity: domain.SeverityHigh,
					Category: domain.CategoryFunctionality, File: "c.go", Line: 9, Message: "m3"},
			},
		},
	}

	eng := testEngine(fake)
	req := Request{Graph: reviewGraph(), Target: "/tmp/repo"}

	first, err := eng.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := eng.Run(context.Background(), req)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		if len(again.Findings) != len(first.Findings) {
			t.Fatalf("run %d: findings count changed", i)
		}
		for j := range first.Findings {
			if again.Findings[j] != first.Findings[j] {
				t.Errorf("run %d: finding %d order changed: %+v vs %+v",
					i, j, again.Findings[j], first.Findings[j])
			}
		}
	}
}

func TestRun_DepthSubset(t *testing.T) {
	g := reviewGraph()
	g.Depths = map[string][]string{"quick": {"lint"}}

	fake := &fakeAnalyzer{}

	rep, err := testEngine(fake).Run(context.Background(), Request{
		Graph:  g,
		Target: "/tmp/repo",
		Depth:  "quick",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Depth != "quick" {
		t.Errorf("report should carry depth, got %q", rep.Depth)
	}
	if rep.Metrics.TasksRun != 1 {
		t.Errorf("quick should run only lint, got %d tasks", rep.Metrics.TasksRun)
	}
}
