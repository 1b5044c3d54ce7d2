// Package engine содержит реестр задач и планировщик Argus.
//
// Включает:
//   - load.go      — загрузка графов из YAML
//   - registry.go  — валидация графа и сборка TaskSet (Task Registry)
//   - phases.go    — разбиение на фазы по алгоритму Кана (Dependency Scheduler)
//   - predicate.go — именованные предикаты включения задач
//
// Engine отвечает за понимание структуры графа и порядок выполнения;
// само выполнение живёт в executor и orchestrator.
package engine
