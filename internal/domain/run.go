package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — persisted-запись запуска ревью.
//
// Run создаётся когда:
//   - Пользователь запускает ревью через API/CLI
//   - Scheduler создаёт run по расписанию
//
// Каждый run выполняет конкретную версию графа над одним target.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// GraphID — ссылка на граф.
	GraphID uuid.UUID `json:"graph_id"`

	// GraphVersion — версия графа, которая выполняется.
	GraphVersion int `json:"graph_version"`

	// Target — цель ревью (путь в рабочей области worker'а или URL).
	Target string `json:"target"`

	// Depth — пресет глубины: quick, standard, deep.
	Depth string `json:"depth"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Report — итоговый отчёт. Nil, пока run не завершён.
	Report *Report `json:"report,omitempty"`

	// Error — текст ошибки для FAILED (ошибка конфигурации графа).
	Error string `json:"error,omitempty"`

	// IdempotencyKey — ключ идемпотентности для scheduled runs:
	// "{schedule_id}_{next_due_at}".
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// StartedAt — время перехода в RUNNING.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён.
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в SUCCEEDED с отчётом.
func (r *Run) MarkSucceeded(report *Report) {
	now := time.Now()
	r.Status = RunSucceeded
	r.FinishedAt = &now
	r.Report = report
}

// MarkFailed переводит run в FAILED с ошибкой.
// Используется только для ошибок конфигурации — отчёта в этом случае нет.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunFailed
	r.FinishedAt = &now
	r.Error = err
}
