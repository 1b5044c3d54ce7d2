package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Argus/internal/domain"
)

// testGraph строит валидный граф: две группы, четыре reviewer'а.
//
//	lint ──→ security ──→ summary
//	tests ─────────────↗
func testGraph() *domain.ReviewGraph {
	return &domain.ReviewGraph{
		Name: "go-service",
		Groups: []domain.GroupDef{
			{Name: "analysis", Mode: domain.GroupModeParallel, TimeoutSec: 60},
			{Name: "reporting", Mode: domain.GroupModeSequential, TimeoutSec: 120},
		},
		Reviewers: []domain.ReviewerDef{
			{ID: "lint", TimeoutSec: 30, Group: "analysis", Retry: domain.RetryOptional,
				Analyzer: domain.AnalyzerDef{Strategy: "command"}},
			{ID: "tests", TimeoutSec: 60, Group: "analysis", Retry: domain.RetryCritical,
				Analyzer: domain.AnalyzerDef{Strategy: "command"}},
			{ID: "security", TimeoutSec: 45, Group: "analysis", Retry: domain.RetryCritical,
				DependsOn: []string{"lint"},
				Analyzer:  domain.AnalyzerDef{Strategy: "http"}},
			{ID: "summary", TimeoutSec: 30, Group: "reporting", Retry: domain.RetryOptional,
				DependsOn: []string{"security", "tests"},
				Analyzer:  domain.AnalyzerDef{Strategy: "static"}},
		},
		Depths: map[string][]string{
			"quick":    {"lint"},
			"standard": {"security", "tests"},
		},
	}
}

func TestLoad_ValidGraph(t *testing.T) {
	ts, err := Load(testGraph(), "", NewPredicateSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ts.Size() != 4 {
		t.Errorf("expected 4 reviewers, got %d", ts.Size())
	}
	if ts.GraphName != "go-service" {
		t.Errorf("expected graph name go-service, got %s", ts.GraphName)
	}

	// Порядок объявления сохраняется
	ids := ts.IDs()
	want := []string{"lint", "tests", "security", "summary"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("IDs()[%d] = %s, want %s", i, ids[i], id)
		}
	}
}

func TestLoad_EmptyGraph(t *testing.T) {
	_, err := Load(&domain.ReviewGraph{Name: "empty"}, "", NewPredicateSet())
	if !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph, got %v", err)
	}

	_, err = Load(nil, "", NewPredicateSet())
	if !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph for nil graph, got %v", err)
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	g := testGraph()
	g.Reviewers = append(g.Reviewers, domain.ReviewerDef{
		ID: "lint", TimeoutSec: 10, Group: "analysis", Retry: domain.RetryOptional,
		Analyzer: domain.AnalyzerDef{Strategy: "command"},
	})

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrDuplicateTask) {
		t.Fatalf("expected ErrDuplicateTask, got %v", err)
	}

	// ConfigError несёт ID виновника
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatal("expected *ConfigError")
	}
	if cfgErr.TaskID != "lint" {
		t.Errorf("expected TaskID lint, got %s", cfgErr.TaskID)
	}
}

func TestLoad_UnknownDependency(t *testing.T) {
	g := testGraph()
	g.Reviewers[0].DependsOn = []string{"missing"}

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrUnknownDependency) {
		t.Errorf("expected ErrUnknownDependency, got %v", err)
	}
}

func TestLoad_ForwardReferenceAllowed(t *testing.T) {
	// lint объявлен до security, но может зависеть от него
	g := testGraph()
	g.Reviewers[0].DependsOn = []string{"summary"}
	// разрываем обратное ребро, иначе цикл
	g.Reviewers[3].DependsOn = []string{"security", "tests"}

	if _, err := Load(g, "", NewPredicateSet()); err == nil {
		t.Fatal("expected cycle error: summary->security->lint->summary")
	}

	// Чистая forward-ссылка без цикла валидна
	g2 := testGraph()
	g2.Reviewers[0].DependsOn = []string{"tests"}
	if _, err := Load(g2, "", NewPredicateSet()); err != nil {
		t.Errorf("forward reference should be valid, got %v", err)
	}
}

func TestLoad_SelfDependency(t *testing.T) {
	g := testGraph()
	g.Reviewers[1].DependsOn = []string{"tests"}

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrSelfDependency) {
		t.Errorf("expected ErrSelfDependency, got %v", err)
	}
}

func TestLoad_Cycle(t *testing.T) {
	g := testGraph()
	// lint → security → lint
	g.Reviewers[0].DependsOn = []string{"security"}

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}

	// Ошибка детерминированно называет первого по объявлению участника цикла
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatal("expected *ConfigError")
	}
	if cfgErr.TaskID != "lint" {
		t.Errorf("expected cycle member lint, got %s", cfgErr.TaskID)
	}
}

func TestLoad_UnknownGroup(t *testing.T) {
	g := testGraph()
	g.Reviewers[0].Group = "nonexistent"

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestLoad_InvalidGroupMode(t *testing.T) {
	g := testGraph()
	g.Groups[0].Mode = "round-robin"

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrInvalidGroupMode) {
		t.Errorf("expected ErrInvalidGroupMode, got %v", err)
	}
}

func TestLoad_GroupTimeoutTooSmall(t *testing.T) {
	// parallel: таймаут группы должен покрывать максимум участников
	g := testGraph()
	g.Groups[0].TimeoutSec = 30 // tests требует 60

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrGroupTimeout) {
		t.Errorf("expected ErrGroupTimeout for parallel group, got %v", err)
	}

	// sequential: таймаут должен покрывать сумму участников
	g2 := testGraph()
	g2.Reviewers[3].Group = "reporting"
	g2.Reviewers[2].Group = "reporting" // 45 + 30 = 75 < 120, ок
	g2.Groups[1].TimeoutSec = 70

	_, err = Load(g2, "", NewPredicateSet())
	if !errors.Is(err, ErrGroupTimeout) {
		t.Errorf("expected ErrGroupTimeout for sequential group, got %v", err)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	g := testGraph()
	g.Reviewers[0].TimeoutSec = 0

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrInvalidTimeout) {
		t.Errorf("expected ErrInvalidTimeout, got %v", err)
	}
}

func TestLoad_UnknownRetryClass(t *testing.T) {
	g := testGraph()
	g.Reviewers[0].Retry = "best-effort"

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrUnknownRetryClass) {
		t.Errorf("expected ErrUnknownRetryClass, got %v", err)
	}
}

func TestLoad_UnknownPredicate(t *testing.T) {
	g := testGraph()
	g.Reviewers[0].Predicate = "has_yaml"

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrUnknownPredicate) {
		t.Errorf("expected ErrUnknownPredicate, got %v", err)
	}
}

func TestLoad_DepthSubset(t *testing.T) {
	// quick выбирает только lint — без зависимостей
	ts, err := Load(testGraph(), DepthQuick, NewPredicateSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Size() != 1 {
		t.Errorf("quick should select 1 reviewer, got %d", ts.Size())
	}
	if ts.Reviewer("lint") == nil {
		t.Error("quick should include lint")
	}
}

func TestLoad_DepthTransitiveClosure(t *testing.T) {
	// standard объявляет security и tests; security тянет lint транзитивно
	ts, err := Load(testGraph(), DepthStandard, NewPredicateSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ts.Size() != 3 {
		t.Errorf("standard should select 3 reviewers (with closure), got %d", ts.Size())
	}
	for _, id := range []string{"lint", "tests", "security"} {
		if ts.Reviewer(id) == nil {
			t.Errorf("standard should include %s", id)
		}
	}
	if ts.Reviewer("summary") != nil {
		t.Error("standard should not include summary")
	}
}

func TestLoad_DepthDeepDefaultsToWholeGraph(t *testing.T) {
	// deep не объявлен в Depths — означает весь граф
	ts, err := Load(testGraph(), DepthDeep, NewPredicateSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Size() != 4 {
		t.Errorf("deep without preset should select all 4 reviewers, got %d", ts.Size())
	}
}

func TestLoad_UnknownDepth(t *testing.T) {
	g := testGraph()
	delete(g.Depths, "quick")

	_, err := Load(g, DepthQuick, NewPredicateSet())
	if !errors.Is(err, ErrUnknownDepth) {
		t.Errorf("expected ErrUnknownDepth, got %v", err)
	}
}

func TestLoad_DepthReferencesUnknownReviewer(t *testing.T) {
	g := testGraph()
	g.Depths["quick"] = []string{"ghost"}

	_, err := Load(g, DepthQuick, NewPredicateSet())
	if !errors.Is(err, ErrUnknownDependency) {
		t.Errorf("expected ErrUnknownDependency, got %v", err)
	}
}

func TestLoad_MissingAnalyzerStrategy(t *testing.T) {
	g := testGraph()
	g.Reviewers[0].Analyzer.Strategy = ""

	_, err := Load(g, "", NewPredicateSet())
	if !errors.Is(err, ErrUnknownAnalyzer) {
		t.Errorf("expected ErrUnknownAnalyzer, got %v", err)
	}
}
