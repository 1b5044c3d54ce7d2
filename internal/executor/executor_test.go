package executor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Argus/internal/analyzer"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
)

// fakeAnalyzer — управляемый analyzer для тестов.
type fakeAnalyzer struct {
	strategy string
	fn       func(ctx context.Context, req *analyzer.Request) ([]domain.Finding, error)
	calls    atomic.Int32
}

func (f *fakeAnalyzer) Strategy() string { return f.strategy }

func (f *fakeAnalyzer) Execute(ctx context.Context, req *analyzer.Request) ([]domain.Finding, error) {
	f.calls.Add(1)
	return f.fn(ctx, req)
}

func testRegistry(fakes ...*fakeAnalyzer) *analyzer.Registry {
	r := analyzer.NewRegistry()
	for _, f := range fakes {
		r.Register(f)
	}
	return r
}

func makeTask(id, group, strategy string, retry domain.RetryClass, timeoutSec int, deps ...string) *domain.ReviewerDef {
	return &domain.ReviewerDef{
		ID:         id,
		TimeoutSec: timeoutSec,
		Group:      group,
		Retry:      retry,
		DependsOn:  deps,
		Analyzer:   domain.AnalyzerDef{Strategy: strategy},
	}
}

func makeRuns(tasks ...*domain.ReviewerDef) map[string]*domain.TaskRun {
	runs := make(map[string]*domain.TaskRun, len(tasks))
	for _, task := range tasks {
		runs[task.ID] = domain.NewTaskRun(task.ID)
	}
	return runs
}

func parallelGroup(timeoutSec int, tasks ...*domain.ReviewerDef) []engine.GroupTasks {
	return []engine.GroupTasks{{
		Group: &domain.GroupDef{Name: "g", Mode: domain.GroupModeParallel, TimeoutSec: timeoutSec},
		Tasks: tasks,
	}}
}

func sequentialGroup(timeoutSec int, tasks ...*domain.ReviewerDef) []engine.GroupTasks {
	return []engine.GroupTasks{{
		Group: &domain.GroupDef{Name: "g", Mode: domain.GroupModeSequential, TimeoutSec: timeoutSec},
		Tasks: tasks,
	}}
}

func TestRunGroups_Success(t *testing.T) {
	fake := &fakeAnalyzer{strategy: "ok", fn: func(_ context.Context, req *analyzer.Request) ([]domain.Finding, error) {
		return []domain.Finding{{
			SourceTaskID: req.TaskID,
			Severity:     domain.SeverityLow,
			Category:     domain.CategoryStyle,
			File:         "main.go",
			Message:      "finding",
		}}, nil
	}}

	sink := make(chan domain.Finding, 16)
	exec := New(Config{Analyzers: testRegistry(fake), Sink: sink})

	task := makeTask("lint", "g", "ok", domain.RetryOptional, 5)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	run := runs["lint"]
	if run.Status != domain.TaskCompleted {
		t.Fatalf("expected completed, got %s (error: %s)", run.Status, run.Error)
	}
	if run.Attempt != 1 {
		t.Errorf("expected 1 attempt, got %d", run.Attempt)
	}
	if len(run.Findings) != 1 {
		t.Errorf("expected 1 finding, got %d", len(run.Findings))
	}

	// Findings ушли в sink
	select {
	case f := <-sink:
		if f.SourceTaskID != "lint" {
			t.Errorf("expected finding from lint, got %s", f.SourceTaskID)
		}
	default:
		t.Error("expected finding in sink")
	}
}

func TestRunGroups_CriticalRetries(t *testing.T) {
	fake := &fakeAnalyzer{strategy: "flaky", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, errors.New("transient failure")
	}}

	exec := New(Config{
		Analyzers:    testRegistry(fake),
		RetryBackoff: time.Millisecond,
	})

	task := makeTask("sec", "g", "flaky", domain.RetryCritical, 5)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	// 1 попытка + MaxCriticalRetries повторов
	wantCalls := int32(1 + domain.MaxCriticalRetries)
	if got := fake.calls.Load(); got != wantCalls {
		t.Errorf("expected %d attempts, got %d", wantCalls, got)
	}
	if runs["sec"].Status != domain.TaskFailed {
		t.Errorf("expected failed, got %s", runs["sec"].Status)
	}
	if runs["sec"].Attempt != int(wantCalls) {
		t.Errorf("expected Attempt=%d, got %d", wantCalls, runs["sec"].Attempt)
	}
}

func TestRunGroups_OptionalDoesNotRetry(t *testing.T) {
	fake := &fakeAnalyzer{strategy: "flaky", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, errors.New("boom")
	}}

	exec := New(Config{Analyzers: testRegistry(fake), RetryBackoff: time.Millisecond})

	task := makeTask("style", "g", "flaky", domain.RetryOptional, 5)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	if got := fake.calls.Load(); got != 1 {
		t.Errorf("optional task should not retry, got %d attempts", got)
	}
	if runs["style"].Status != domain.TaskFailed {
		t.Errorf("expected failed, got %s", runs["style"].Status)
	}
}

func TestRunGroups_ConfigErrorNotRetried(t *testing.T) {
	// Ошибка конфигурации не ретраится даже у critical
	fake := &fakeAnalyzer{strategy: "bad", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, analyzer.ErrInvalidConfig
	}}

	exec := New(Config{Analyzers: testRegistry(fake), RetryBackoff: time.Millisecond})

	task := makeTask("sec", "g", "bad", domain.RetryCritical, 5)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	if got := fake.calls.Load(); got != 1 {
		t.Errorf("config error should not retry, got %d attempts", got)
	}
	if runs["sec"].Status != domain.TaskFailed {
		t.Errorf("expected failed, got %s", runs["sec"].Status)
	}
}

func TestRunGroups_TaskTimeout(t *testing.T) {
	fake := &fakeAnalyzer{strategy: "slow", fn: func(ctx context.Context, _ *analyzer.Request) ([]domain.Finding, error) {
		select {
		case <-time.After(5 * time.Second):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}

	exec := New(Config{Analyzers: testRegistry(fake), RetryBackoff: time.Millisecond})

	task := makeTask("slow", "g", "slow", domain.RetryOptional, 1)
	runs := makeRuns(task)

	start := time.Now()
	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout should fire around 1s, took %s", elapsed)
	}

	run := runs["slow"]
	// Таймаут — отдельный терминальный статус, не failed
	if run.Status != domain.TaskTimeout {
		t.Fatalf("expected timeout, got %s", run.Status)
	}
	if !strings.Contains(run.Error, "max execution time") {
		t.Errorf("expected max execution time error, got %q", run.Error)
	}
}

func TestRunGroups_GroupTimeout(t *testing.T) {
	fake := &fakeAnalyzer{strategy: "slow", fn: func(ctx context.Context, _ *analyzer.Request) ([]domain.Finding, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	exec := New(Config{Analyzers: testRegistry(fake), RetryBackoff: time.Millisecond})

	// Таймаут задачи 10s, но группа даёт только 1s
	task := makeTask("slow", "g", "slow", domain.RetryOptional, 10)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(1, task), runs)

	run := runs["slow"]
	if run.Status != domain.TaskTimeout {
		t.Fatalf("expected timeout, got %s", run.Status)
	}
	if run.Error != "group timeout" {
		t.Errorf("expected group timeout, got %q", run.Error)
	}
}

func TestRunGroups_SequentialOrder(t *testing.T) {
	var order []string
	fake := &fakeAnalyzer{strategy: "ok", fn: func(_ context.Context, req *analyzer.Request) ([]domain.Finding, error) {
		order = append(order, req.TaskID)
		return nil, nil
	}}

	exec := New(Config{Analyzers: testRegistry(fake)})

	a := makeTask("a", "g", "ok", domain.RetryOptional, 5)
	b := makeTask("b", "g", "ok", domain.RetryOptional, 5)
	c := makeTask("c", "g", "ok", domain.RetryOptional, 5)
	runs := makeRuns(a, b, c)

	exec.RunGroups(context.Background(), "/tmp/repo", sequentialGroup(30, a, b, c), runs)

	// Без гонок: sequential-группа выполняется в одной горутине
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected sequential order [a b c], got %v", order)
	}
}

func TestRunGroups_SequentialCriticalBlocksRest(t *testing.T) {
	fail := &fakeAnalyzer{strategy: "fail", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, errors.New("boom")
	}}
	ok := &fakeAnalyzer{strategy: "ok", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, nil
	}}

	exec := New(Config{Analyzers: testRegistry(fail, ok), RetryBackoff: time.Millisecond})

	a := makeTask("a", "g", "fail", domain.RetryCritical, 5)
	b := makeTask("b", "g", "ok", domain.RetryOptional, 5)
	runs := makeRuns(a, b)

	exec.RunGroups(context.Background(), "/tmp/repo", sequentialGroup(30, a, b), runs)

	if runs["a"].Status != domain.TaskFailed {
		t.Errorf("expected a failed, got %s", runs["a"].Status)
	}
	if runs["b"].Status != domain.TaskSkipped {
		t.Fatalf("expected b skipped, got %s", runs["b"].Status)
	}
	if runs["b"].Reason != "blocked by a" {
		t.Errorf("expected reason 'blocked by a', got %q", runs["b"].Reason)
	}
	if got := ok.calls.Load(); got != 0 {
		t.Errorf("b should never start, got %d calls", got)
	}
}

func TestRunGroups_SequentialOptionalDoesNotBlock(t *testing.T) {
	fail := &fakeAnalyzer{strategy: "fail", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, errors.New("boom")
	}}
	ok := &fakeAnalyzer{strategy: "ok", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		return nil, nil
	}}

	exec := New(Config{Analyzers: testRegistry(fail, ok), RetryBackoff: time.Millisecond})

	a := makeTask("a", "g", "fail", domain.RetryOptional, 5)
	b := makeTask("b", "g", "ok", domain.RetryOptional, 5)
	runs := makeRuns(a, b)

	exec.RunGroups(context.Background(), "/tmp/repo", sequentialGroup(30, a, b), runs)

	if runs["b"].Status != domain.TaskCompleted {
		t.Errorf("optional failure should not block, b got %s", runs["b"].Status)
	}
}

func TestRunGroups_LateResultDiscarded(t *testing.T) {
	// Analyzer игнорирует отмену и возвращает findings после таймаута.
	// Результат должен быть отброшен, горутина — не зависнуть на канале.
	done := make(chan struct{})
	fake := &fakeAnalyzer{strategy: "stubborn", fn: func(context.Context, *analyzer.Request) ([]domain.Finding, error) {
		defer close(done)
		time.Sleep(1500 * time.Millisecond)
		return []domain.Finding{{
			SourceTaskID: "stubborn", Severity: domain.SeverityHigh,
			Category: domain.CategorySecurity, File: "x.go", Message: "late",
		}}, nil
	}}

	sink := make(chan domain.Finding, 16)
	exec := New(Config{Analyzers: testRegistry(fake), Sink: sink, RetryBackoff: time.Millisecond})

	task := makeTask("stubborn", "g", "stubborn", domain.RetryOptional, 1)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	if runs["stubborn"].Status != domain.TaskTimeout {
		t.Fatalf("expected timeout, got %s", runs["stubborn"].Status)
	}

	// Ждём завершения горутины analyzer'а и убеждаемся, что поздние
	// findings не попали в sink.
	<-done
	time.Sleep(50 * time.Millisecond)
	select {
	case f := <-sink:
		t.Errorf("late finding should be discarded, got %+v", f)
	default:
	}
}

func TestRunGroups_UnknownStrategy(t *testing.T) {
	exec := New(Config{Analyzers: testRegistry(), RetryBackoff: time.Millisecond})

	task := makeTask("x", "g", "missing", domain.RetryCritical, 5)
	runs := makeRuns(task)

	exec.RunGroups(context.Background(), "/tmp/repo", parallelGroup(10, task), runs)

	run := runs["x"]
	if run.Status != domain.TaskFailed {
		t.Fatalf("expected failed, got %s", run.Status)
	}
	if !strings.Contains(run.Error, "missing") {
		t.Errorf("error should name the strategy, got %q", run.Error)
	}
}
