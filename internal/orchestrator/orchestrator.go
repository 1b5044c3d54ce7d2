package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Argus/internal/aggregate"
	"github.com/shaiso/Argus/internal/analyzer"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
	"github.com/shaiso/Argus/internal/executor"
)

// sinkBuffer — буфер канала findings между executor'ом и коллектором.
const sinkBuffer = 64

// Engine выполняет ревью от валидации графа до готового отчёта.
//
// Последовательность:
//  1. Registry: валидация графа, выбор глубины → TaskSet (ConfigError фатальна)
//  2. Scheduler: разбиение на фазы (чистая функция)
//  3. Предикаты: вычисляются один раз, до выполнения
//  4. Фазы по очереди: блокировки разрешаются до старта фазы,
//     executor доводит каждую задачу фазы до терминального статуса
//  5. Агрегация findings и сборка отчёта
//
// Run всегда возвращает отчёт, кроме случая ошибки конфигурации:
// даже если упали все задачи, отчёт непуст в секциях skipped/metrics.
type Engine struct {
	analyzers    *analyzer.Registry
	predicates   *engine.PredicateSet
	maxWorkers   int
	retryBackoff time.Duration
	logger       *slog.Logger
}

// Config — конфигурация Engine.
type Config struct {
	// Analyzers — реестр стратегий анализа (default: DefaultRegistry).
	Analyzers *analyzer.Registry

	// Predicates — реестр предикатов (default: NewPredicateSet).
	Predicates *engine.PredicateSet

	// MaxWorkers — размер пула executor'а.
	MaxWorkers int

	// RetryBackoff — пауза между попытками (в тестах укорачивается).
	RetryBackoff time.Duration

	// Logger — логгер (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт Engine.
func New(cfg Config) *Engine {
	analyzers := cfg.Analyzers
	if analyzers == nil {
		analyzers = analyzer.DefaultRegistry()
	}

	predicates := cfg.Predicates
	if predicates == nil {
		predicates = engine.NewPredicateSet()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		analyzers:    analyzers,
		predicates:   predicates,
		maxWorkers:   cfg.MaxWorkers,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
	}
}

// Request — параметры одного ревью.
type Request struct {
	// Graph — граф ревью.
	Graph *domain.ReviewGraph

	// Target — цель ревью (путь или ссылка).
	Target string

	// Depth — пресет глубины: quick, standard, deep. Пусто = весь граф.
	Depth string
}

// Run выполняет ревью.
//
// Возвращает ошибку только для *engine.ConfigError — в этом случае
// выполнение не начиналось и частичного отчёта нет.
func (e *Engine) Run(ctx context.Context, req Request) (*domain.Report, error) {
	started := time.Now()

	ts, err := engine.Load(req.Graph, req.Depth, e.predicates)
	if err != nil {
		return nil, err
	}

	phases := engine.Schedule(ts)
	state := NewRunState(ts, phases)

	e.logger.Info("review started",
		"graph", ts.GraphName,
		"target", req.Target,
		"depth", req.Depth,
		"tasks", ts.Size(),
		"phases", len(phases),
	)

	e.evalPredicates(req.Target, ts, state)

	// Единственный читатель канала — коллектор агрегатора.
	// Владение finding'ом переходит в момент записи.
	sink := make(chan domain.Finding, sinkBuffer)
	collected := make([]domain.Finding, 0)
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for f := range sink {
			collected = append(collected, f)
		}
	}()

	exec := executor.New(executor.Config{
		Analyzers:    e.analyzers,
		MaxWorkers:   e.maxWorkers,
		RetryBackoff: e.retryBackoff,
		Sink:         sink,
		Logger:       e.logger,
	})

	// Фазы строго последовательно: фаза N+1 не стартует,
	// пока каждая задача фазы N не терминальна.
	for _, phase := range phases {
		runnable := e.resolvePhase(phase, ts, state)
		if len(runnable) == 0 {
			continue
		}

		groups := engine.PhaseGroups(engine.Phase{Index: phase.Index, Tasks: runnable}, ts)
		exec.RunGroups(ctx, req.Target, groups, state.Runs())
	}

	close(sink)
	<-collectorDone

	agg := aggregate.Aggregate(collected)
	rep := state.BuildReport(req.Target, agg, time.Since(started))

	e.logger.Info("review finished",
		"graph", ts.GraphName,
		"findings", rep.Metrics.TotalFindings,
		"failed", rep.Metrics.TasksFailed,
		"skipped", rep.Metrics.TasksSkipped,
		"duration", rep.Metrics.Duration,
	)

	return rep, nil
}

// evalPredicates вычисляет предикаты всех задач один раз за run.
// Непрошедшие помечаются skipped без потребления executor'а.
func (e *Engine) evalPredicates(target string, ts *engine.TaskSet, state *RunState) {
	for _, id := range ts.IDs() {
		task := ts.Reviewer(id)
		if task.Predicate == "" {
			continue
		}

		fn, ok := e.predicates.Lookup(task.Predicate)
		if !ok {
			// Registry уже проверил имена — сюда попадать не должны.
			continue
		}

		met, err := fn(target)
		if err != nil {
			e.logger.Warn("predicate evaluation failed, skipping task",
				"task_id", id,
				"predicate", task.Predicate,
				"error", err,
			)
			state.Run(id).MarkSkipped("predicate not met")
			continue
		}

		if !met {
			e.logger.Debug("predicate not met",
				"task_id", id,
				"predicate", task.Predicate,
			)
			state.Run(id).MarkSkipped("predicate not met")
		}
	}
}

// resolvePhase разрешает блокировки фазы до её старта.
//
// Задача выполняется, только когда каждая её зависимость completed.
// Упавшая или пропущенная critical-зависимость блокирует задачу
// транзитивно: она помечается skipped ("blocked by <id>") и сама
// блокирует своих зависимых в следующих фазах. Упавшая optional-зависимость
// не блокирует — задача получает флаг UpstreamDegraded и выполняется.
func (e *Engine) resolvePhase(phase engine.Phase, ts *engine.TaskSet, state *RunState) []*domain.ReviewerDef {
	var runnable []*domain.ReviewerDef

	for _, task := range phase.Tasks {
		run := state.Run(task.ID)
		if run.Status != domain.TaskPending {
			// Уже skipped предикатом.
			continue
		}

		blockedBy := ""
		degraded := false

		for _, dep := range task.DependsOn {
			depRun := state.Run(dep)
			if depRun.Status == domain.TaskCompleted {
				continue
			}

			if ts.Reviewer(dep).IsCritical() || depRun.Status == domain.TaskSkipped {
				blockedBy = dep
				break
			}

			// Optional-зависимость упала: выполняемся деградированно.
			degraded = true
		}

		if blockedBy != "" {
			run.MarkSkipped("blocked by " + blockedBy)
			e.logger.Info("task blocked",
				"task_id", task.ID,
				"blocked_by", blockedBy,
			)
			continue
		}

		run.UpstreamDegraded = degraded
		runnable = append(runnable, task)
	}

	return runnable
}
