// Package orchestrator связывает компоненты ревью в единый прогон:
// валидацию графа (engine), разбиение на фазы, выполнение (executor),
// агрегацию findings (aggregate) и сборку отчёта.
//
// Ошибка конфигурации (*engine.ConfigError) фатальна и возвращается
// до начала выполнения. Ошибки выполнения отдельных задач фатальными
// не являются: они фиксируются в TaskRun'ах и попадают в отчёт.
package orchestrator
