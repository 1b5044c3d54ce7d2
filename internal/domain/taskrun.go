package domain

import "time"

// TaskRun — runtime-запись выполнения одного reviewer'а.
//
// Создаётся, когда фаза начинает планировать задачу, и после агрегации
// сворачивается в Report. Retry не создаёт новую запись — инкрементирует
// Attempt в существующей.
type TaskRun struct {
	// TaskID — ID reviewer'а.
	TaskID string `json:"task_id"`

	// Status — текущий статус. Меняется только вперёд по жизненному циклу.
	Status TaskStatus `json:"status"`

	// Attempt — номер попытки (1 после первого запуска).
	Attempt int `json:"attempt"`

	// Findings — результат успешного выполнения.
	// Nil для failed/timeout/skipped.
	Findings []Finding `json:"findings,omitempty"`

	// Error — текст ошибки для failed/timeout.
	Error string `json:"error,omitempty"`

	// Reason — причина для skipped: "predicate not met" или "blocked by <id>".
	Reason string `json:"reason,omitempty"`

	// UpstreamDegraded — true, если optional-зависимость упала.
	// Задача при этом выполняется.
	UpstreamDegraded bool `json:"upstream_degraded,omitempty"`

	// StartedAt — время первого перехода в running.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// EndedAt — время перехода в терминальный статус.
	EndedAt *time.Time `json:"ended_at,omitempty"`
}

// NewTaskRun создаёт TaskRun в статусе pending.
func NewTaskRun(taskID string) *TaskRun {
	return &TaskRun{
		TaskID: taskID,
		Status: TaskPending,
	}
}

// Duration возвращает продолжительность выполнения.
func (t *TaskRun) Duration() time.Duration {
	if t.StartedAt == nil || t.EndedAt == nil {
		return 0
	}
	return t.EndedAt.Sub(*t.StartedAt)
}

// IsFinished возвращает true, если TaskRun в терминальном статусе.
func (t *TaskRun) IsFinished() bool {
	return t.Status.IsTerminal()
}

// MarkRunning переводит TaskRun в running и инкрементирует Attempt.
func (t *TaskRun) MarkRunning() {
	if t.StartedAt == nil {
		now := time.Now()
		t.StartedAt = &now
	}
	t.Status = TaskRunning
	t.Attempt++
}

// MarkCompleted переводит TaskRun в completed с findings.
func (t *TaskRun) MarkCompleted(findings []Finding) {
	now := time.Now()
	t.Status = TaskCompleted
	t.EndedAt = &now
	t.Findings = findings
	t.Error = ""
}

// MarkFailed переводит TaskRun в failed с текстом ошибки.
func (t *TaskRun) MarkFailed(errMsg string) {
	now := time.Now()
	t.Status = TaskFailed
	t.EndedAt = &now
	t.Error = errMsg
}

// MarkTimeout переводит TaskRun в timeout.
// Поздний результат (если внешний вызов проигнорировал отмену) отбрасывается.
func (t *TaskRun) MarkTimeout(errMsg string) {
	now := time.Now()
	t.Status = TaskTimeout
	t.EndedAt = &now
	t.Error = errMsg
}

// MarkSkipped переводит TaskRun в skipped с причиной.
// Skipped-задача не проходит через running.
func (t *TaskRun) MarkSkipped(reason string) {
	now := time.Now()
	t.Status = TaskSkipped
	t.EndedAt = &now
	t.Reason = reason
}

// CanRetry проверяет, разрешена ли ещё одна попытка.
// maxAttempts — общее число попыток, включая первую.
func (t *TaskRun) CanRetry(maxAttempts int) bool {
	return t.Attempt < maxAttempts
}
