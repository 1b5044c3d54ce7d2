package domain

import "time"

// SkippedTask — запись о пропущенной задаче в отчёте.
type SkippedTask struct {
	// TaskID — ID reviewer'а.
	TaskID string `json:"task_id"`

	// Reason — причина пропуска: "predicate not met", "blocked by <id>".
	Reason string `json:"reason"`
}

// Metrics — итоговые метрики выполнения ревью.
type Metrics struct {
	// TotalFindings — количество findings после дедупликации.
	TotalFindings int `json:"total_findings"`

	// TasksRun — количество задач, реально запускавшихся.
	TasksRun int `json:"tasks_run"`

	// TasksCompleted — завершились успешно.
	TasksCompleted int `json:"tasks_completed"`

	// TasksFailed — завершились ошибкой (включая timeout).
	TasksFailed int `json:"tasks_failed"`

	// TasksSkipped — пропущены (предикат или блокировка).
	TasksSkipped int `json:"tasks_skipped"`

	// Retries — суммарное количество повторных попыток.
	Retries int `json:"retries"`

	// MalformedFindings — findings, отброшенные агрегатором
	// из-за отсутствия обязательных полей.
	MalformedFindings int `json:"malformed_findings"`

	// Duration — wall-clock продолжительность ревью.
	Duration time.Duration `json:"duration"`
}

// Report — итоговый артефакт ревью.
//
// Отчёт детерминирован: одинаковые входы дают байт-в-байт одинаковый
// порядок findings (сортировка по score убыв., tie-break по file/line).
type Report struct {
	// GraphName — имя выполненного графа.
	GraphName string `json:"graph_name"`

	// Target — цель ревью (путь или ссылка).
	Target string `json:"target"`

	// Depth — использованный пресет глубины.
	Depth string `json:"depth,omitempty"`

	// Findings — дедуплицированные findings, отсортированные по score.
	Findings []Finding `json:"findings"`

	// Skipped — пропущенные задачи с причинами, отсортированы по TaskID.
	Skipped []SkippedTask `json:"skipped"`

	// Metrics — итоговые метрики.
	Metrics Metrics `json:"metrics"`
}

// BySeverity группирует findings по серьёзности, сохраняя порядок сортировки.
func (r *Report) BySeverity() map[Severity][]Finding {
	tiers := make(map[Severity][]Finding)
	for _, f := range r.Findings {
		tiers[f.Severity] = append(tiers[f.Severity], f)
	}
	return tiers
}

// HasFindingsAtOrAbove проверяет, есть ли findings с серьёзностью
// не ниже порога. Используется для exit-code политики CLI.
func (r *Report) HasFindingsAtOrAbove(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity.Weight() >= threshold.Weight() {
			return true
		}
	}
	return false
}
