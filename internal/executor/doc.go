// Package executor выполняет задачи фазы.
//
// Executor отвечает за:
//   - Конкурентное выполнение parallel-групп через ограниченный пул
//   - Последовательное выполнение sequential-групп
//   - Таймеры: per-task (maxExecutionTime) и per-group (group.timeout)
//   - Кооперативную отмену и отбрасывание поздних результатов
//   - Retry согласно классу задачи (critical/optional)
//   - Передачу findings агрегатору через единственный канал
//
// Executor не знает о зависимостях между фазами — это забота orchestrator.
package executor
