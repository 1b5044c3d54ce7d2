package domain

// TaskStatus — статус выполнения TaskRun.
//
// Жизненный цикл (строго монотонный):
//
//	pending → running → completed
//	                  ↘ failed
//	                  ↘ timeout
//	pending → skipped (предикат или блокировка — без фазы running)
type TaskStatus string

const (
	// TaskPending — TaskRun создан, выполнение не началось.
	TaskPending TaskStatus = "pending"

	// TaskRunning — reviewer выполняется.
	TaskRunning TaskStatus = "running"

	// TaskCompleted — reviewer завершился успешно, findings переданы.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed — внешний вызов вернул ошибку (после всех retry).
	TaskFailed TaskStatus = "failed"

	// TaskTimeout — превышен maxExecutionTime или таймаут группы.
	TaskTimeout TaskStatus = "timeout"

	// TaskSkipped — reviewer не выполнялся: предикат не сработал
	// или задача заблокирована упавшей зависимостью.
	TaskSkipped TaskStatus = "skipped"
)

// IsTerminal возвращает true для финальных статусов.
// Нетерминальны только pending и running.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskTimeout, TaskSkipped:
		return true
	default:
		return false
	}
}

// RunStatus — статус persisted-запуска ревью.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED (только ConfigError — без частичного отчёта)
type RunStatus string

const (
	// RunPending — run создан, ожидает worker'а.
	RunPending RunStatus = "PENDING"

	// RunRunning — run выполняется.
	RunRunning RunStatus = "RUNNING"

	// RunSucceeded — run завершён, отчёт сохранён.
	// Упавшие reviewers не делают run FAILED: отчёт всё равно есть.
	RunSucceeded RunStatus = "SUCCEEDED"

	// RunFailed — run прерван ошибкой конфигурации графа.
	RunFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если run завершён.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunSucceeded, RunFailed:
		return true
	default:
		return false
	}
}
