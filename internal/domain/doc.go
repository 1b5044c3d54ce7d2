// Package domain содержит основные типы данных Argus.
//
// Здесь определены:
//   - ReviewGraph, ReviewerDef, GroupDef — декларативное описание графа ревью
//   - TaskRun — runtime-запись выполнения одного reviewer'а
//   - Finding — отдельная найденная проблема
//   - Report — итоговый отчёт с findings, skipped и метриками
//   - Run — persisted-запись запуска ревью (API/worker режим)
//   - Schedule — расписание периодических ревью
//
// Типы domain не содержат бизнес-логики выполнения — только данные
// и простые методы над ними. Логика живёт в engine, executor и orchestrator.
package domain
