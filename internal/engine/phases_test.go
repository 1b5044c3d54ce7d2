package engine

import (
	"testing"

	"github.com/shaiso/Argus/internal/domain"
)

func mustLoad(t *testing.T, g *domain.ReviewGraph, depth string) *TaskSet {
	t.Helper()
	ts, err := Load(g, depth, NewPredicateSet())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return ts
}

func phaseIDs(p Phase) []string {
	ids := make([]string, len(p.Tasks))
	for i, task := range p.Tasks {
		ids[i] = task.ID
	}
	return ids
}

func TestSchedule_Chain(t *testing.T) {
	g := &domain.ReviewGraph{
		Name:   "chain",
		Groups: []domain.GroupDef{{Name: "g", Mode: domain.GroupModeParallel, TimeoutSec: 60}},
		Reviewers: []domain.ReviewerDef{
			{ID: "a", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "b", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				DependsOn: []string{"a"}, Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "c", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				DependsOn: []string{"b"}, Analyzer: domain.AnalyzerDef{Strategy: "static"}},
		},
	}

	phases := Schedule(mustLoad(t, g, ""))

	if len(phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(phases))
	}
	for i, want := range []string{"a", "b", "c"} {
		ids := phaseIDs(phases[i])
		if len(ids) != 1 || ids[0] != want {
			t.Errorf("phase %d = %v, want [%s]", i, ids, want)
		}
		if phases[i].Index != i {
			t.Errorf("phase %d has Index %d", i, phases[i].Index)
		}
	}
}

func TestSchedule_Diamond(t *testing.T) {
	// a → b → d
	// a → c → d
	g := &domain.ReviewGraph{
		Name:   "diamond",
		Groups: []domain.GroupDef{{Name: "g", Mode: domain.GroupModeParallel, TimeoutSec: 60}},
		Reviewers: []domain.ReviewerDef{
			{ID: "a", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "c", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				DependsOn: []string{"a"}, Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "b", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				DependsOn: []string{"a"}, Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "d", TimeoutSec: 10, Group: "g", Retry: domain.RetryCritical,
				DependsOn: []string{"b", "c"}, Analyzer: domain.AnalyzerDef{Strategy: "static"}},
		},
	}

	phases := Schedule(mustLoad(t, g, ""))

	if len(phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(phases))
	}

	// Фаза 1: b и c, в детерминированном порядке (по ID)
	mid := phaseIDs(phases[1])
	if len(mid) != 2 || mid[0] != "b" || mid[1] != "c" {
		t.Errorf("phase 1 = %v, want [b c]", mid)
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	ts := mustLoad(t, testGraph(), "")

	first := Schedule(ts)
	for i := 0; i < 10; i++ {
		again := Schedule(ts)
		if len(again) != len(first) {
			t.Fatalf("run %d: phase count changed: %d vs %d", i, len(again), len(first))
		}
		for p := range first {
			a, b := phaseIDs(first[p]), phaseIDs(again[p])
			if len(a) != len(b) {
				t.Fatalf("run %d: phase %d size changed", i, p)
			}
			for j := range a {
				if a[j] != b[j] {
					t.Errorf("run %d: phase %d order changed: %v vs %v", i, p, a, b)
				}
			}
		}
	}
}

func TestSchedule_PhaseOrderedByGroupThenID(t *testing.T) {
	g := &domain.ReviewGraph{
		Name: "ordering",
		Groups: []domain.GroupDef{
			{Name: "zeta", Mode: domain.GroupModeParallel, TimeoutSec: 60},
			{Name: "alpha", Mode: domain.GroupModeParallel, TimeoutSec: 60},
		},
		Reviewers: []domain.ReviewerDef{
			{ID: "z1", TimeoutSec: 10, Group: "zeta", Retry: domain.RetryOptional,
				Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "a2", TimeoutSec: 10, Group: "alpha", Retry: domain.RetryOptional,
				Analyzer: domain.AnalyzerDef{Strategy: "static"}},
			{ID: "a1", TimeoutSec: 10, Group: "alpha", Retry: domain.RetryOptional,
				Analyzer: domain.AnalyzerDef{Strategy: "static"}},
		},
	}

	phases := Schedule(mustLoad(t, g, ""))

	if len(phases) != 1 {
		t.Fatalf("expected 1 phase, got %d", len(phases))
	}
	ids := phaseIDs(phases[0])
	want := []string{"a1", "a2", "z1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("phase order = %v, want %v", ids, want)
			break
		}
	}
}

func TestPhaseGroups(t *testing.T) {
	ts := mustLoad(t, testGraph(), "")
	phases := Schedule(ts)

	// Фаза 0: lint и tests — обе в группе analysis
	groups := PhaseGroups(phases[0], ts)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group in phase 0, got %d", len(groups))
	}
	if groups[0].Group.Name != "analysis" {
		t.Errorf("expected group analysis, got %s", groups[0].Group.Name)
	}
	if len(groups[0].Tasks) != 2 {
		t.Errorf("expected 2 tasks in analysis, got %d", len(groups[0].Tasks))
	}

	// Фаза 2: summary в группе reporting
	groups = PhaseGroups(phases[2], ts)
	if len(groups) != 1 || groups[0].Group.Name != "reporting" {
		t.Fatalf("expected reporting group in phase 2, got %+v", groups)
	}
	if groups[0].Group.Mode != domain.GroupModeSequential {
		t.Error("reporting group should be sequential")
	}
}
