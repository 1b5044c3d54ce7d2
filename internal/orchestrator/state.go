package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/shaiso/Argus/internal/aggregate"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
)

// RunState — состояние выполнения одного ревью в памяти.
//
// Создаётся после валидации графа и живёт до сборки отчёта.
// Содержит TaskRun каждой задачи; TaskRun'ы переходят только вперёд
// по жизненному циклу pending → running → терминальный статус.
type RunState struct {
	ts     *engine.TaskSet
	phases []engine.Phase

	runs map[string]*domain.TaskRun
	mu   sync.RWMutex
}

// NewRunState создаёт RunState с pending TaskRun'ом для каждой задачи.
func NewRunState(ts *engine.TaskSet, phases []engine.Phase) *RunState {
	runs := make(map[string]*domain.TaskRun, ts.Size())
	for _, id := range ts.IDs() {
		runs[id] = domain.NewTaskRun(id)
	}

	return &RunState{
		ts:     ts,
		phases: phases,
		runs:   runs,
	}
}

// Run возвращает TaskRun задачи.
func (s *RunState) Run(taskID string) *domain.TaskRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[taskID]
}

// Runs возвращает map всех TaskRun'ов (для executor'а).
func (s *RunState) Runs() map[string]*domain.TaskRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

// Skipped возвращает пропущенные задачи, отсортированные по TaskID.
func (s *RunState) Skipped() []domain.SkippedTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skippedLocked()
}

// BuildReport сворачивает состояние в итоговый отчёт.
func (s *RunState) BuildReport(target string, agg aggregate.Result, elapsed time.Duration) *domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := domain.Metrics{
		TotalFindings:     len(agg.Findings),
		MalformedFindings: agg.Malformed,
		Duration:          elapsed,
	}

	for _, run := range s.runs {
		if run.Attempt > 0 {
			metrics.TasksRun++
			metrics.Retries += run.Attempt - 1
		}
		switch run.Status {
		case domain.TaskCompleted:
			metrics.TasksCompleted++
		case domain.TaskFailed, domain.TaskTimeout:
			metrics.TasksFailed++
		case domain.TaskSkipped:
			metrics.TasksSkipped++
		}
	}

	return &domain.Report{
		GraphName: s.ts.GraphName,
		Target:    target,
		Depth:     s.ts.Depth,
		Findings:  agg.Findings,
		Skipped:   s.skippedLocked(),
		Metrics:   metrics,
	}
}

// skippedLocked — как Skipped, но без захвата мьютекса (для BuildReport).
func (s *RunState) skippedLocked() []domain.SkippedTask {
	var skipped []domain.SkippedTask
	for id, run := range s.runs {
		if run.Status == domain.TaskSkipped {
			skipped = append(skipped, domain.SkippedTask{TaskID: id, Reason: run.Reason})
		}
	}
	sort.Slice(skipped, func(i, j int) bool {
		return skipped[i].TaskID < skipped[j].TaskID
	})
	return skipped
}
