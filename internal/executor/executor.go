package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Argus/internal/analyzer"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
)

// Значения конфигурации по умолчанию.
const (
	defaultMaxWorkers   = 8
	defaultRetryBackoff = time.Second
)

// Executor выполняет задачи одной фазы.
//
// Модель выполнения:
//   - группы внутри фазы выполняются по очереди в детерминированном порядке
//   - участники parallel-группы — конкурентно, через ограниченный пул
//     (errgroup с SetLimit)
//   - участники sequential-группы — строго по очереди
//   - каждая попытка гонится со своим таймером maxExecutionTime,
//     группа целиком — с таймером group.timeout
//
// Findings завершившихся задач уходят в sink-канал; его единственный
// читатель — агрегатор. Поздний результат задачи, проигнорировавшей
// отмену, отбрасывается.
type Executor struct {
	analyzers    *analyzer.Registry
	maxWorkers   int
	retryBackoff time.Duration
	sink         chan<- domain.Finding
	logger       *slog.Logger
}

// Config — конфигурация Executor.
type Config struct {
	// Analyzers — реестр стратегий анализа.
	Analyzers *analyzer.Registry

	// MaxWorkers — размер пула для parallel-групп (default: 8).
	MaxWorkers int

	// RetryBackoff — пауза между попытками (default: 1s).
	RetryBackoff time.Duration

	// Sink — канал findings, читаемый агрегатором.
	Sink chan<- domain.Finding

	// Logger — логгер (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт Executor.
func New(cfg Config) *Executor {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	analyzers := cfg.Analyzers
	if analyzers == nil {
		analyzers = analyzer.DefaultRegistry()
	}

	return &Executor{
		analyzers:    analyzers,
		maxWorkers:   maxWorkers,
		retryBackoff: backoff,
		sink:         cfg.Sink,
		logger:       logger,
	}
}

// RunGroups выполняет группы одной фазы.
//
// groups — задачи фазы, уже разбитые по группам (engine.PhaseGroups)
// и отфильтрованные от skipped. runs — TaskRun'ы фазы; executor переводит
// их по жизненному циклу до терминальных статусов.
//
// Возвращает управление только когда каждая задача терминальна.
func (e *Executor) RunGroups(ctx context.Context, target string, groups []engine.GroupTasks, runs map[string]*domain.TaskRun) {
	for _, gt := range groups {
		if gt.Group.Mode == domain.GroupModeSequential {
			e.runSequential(ctx, target, gt, runs)
		} else {
			e.runParallel(ctx, target, gt, runs)
		}
	}
}

// runParallel выполняет участников parallel-группы конкурентно.
// Группа гонится против собственного таймаута: по его истечении
// все ещё выполняющиеся участники отменяются и помечаются timeout.
func (e *Executor) runParallel(ctx context.Context, target string, gt engine.GroupTasks, runs map[string]*domain.TaskRun) {
	gctx, cancel := context.WithTimeout(ctx, gt.Group.Timeout())
	defer cancel()

	var g errgroup.Group
	g.SetLimit(e.maxWorkers)

	for _, task := range gt.Tasks {
		task := task
		g.Go(func() error {
			e.runTask(gctx, target, task, runs[task.ID])
			return nil
		})
	}

	g.Wait()
}

// runSequential выполняет участников sequential-группы по очереди
// в объявленном порядке.
//
// Упавший critical-участник блокирует последующих участников группы:
// они помечаются skipped ("blocked by <id>") без запуска. Упавший
// optional-участник выполнение группы не останавливает.
func (e *Executor) runSequential(ctx context.Context, target string, gt engine.GroupTasks, runs map[string]*domain.TaskRun) {
	gctx, cancel := context.WithTimeout(ctx, gt.Group.Timeout())
	defer cancel()

	blockedBy := ""

	for _, task := range gt.Tasks {
		run := runs[task.ID]

		if blockedBy != "" {
			run.MarkSkipped("blocked by " + blockedBy)
			continue
		}

		if gctx.Err() != nil {
			// Бюджет группы исчерпан — оставшиеся участники не стартуют.
			run.MarkTimeout("group timeout")
			continue
		}

		e.runTask(gctx, target, task, run)

		if task.IsCritical() && (run.Status == domain.TaskFailed || run.Status == domain.TaskTimeout) {
			blockedBy = task.ID
		}
	}
}

// runTask выполняет одну задачу с retry согласно её классу.
//
// critical — до domain.MaxCriticalRetries повторов; optional — одна попытка.
// Ошибки конфигурации analyzer'а не ретраятся никогда: повтор упадёт так же.
func (e *Executor) runTask(ctx context.Context, target string, task *domain.ReviewerDef, run *domain.TaskRun) {
	maxAttempts := 1
	if task.IsCritical() {
		maxAttempts = 1 + domain.MaxCriticalRetries
	}

	for {
		run.MarkRunning()

		e.logger.Debug("task started",
			"task_id", task.ID,
			"attempt", run.Attempt,
			"group", task.Group,
		)

		findings, err := e.attempt(ctx, target, task)
		if err == nil {
			run.MarkCompleted(findings)
			e.emit(findings)
			e.logger.Info("task completed",
				"task_id", task.ID,
				"attempt", run.Attempt,
				"findings", len(findings),
			)
			return
		}

		retryable := run.CanRetry(maxAttempts) &&
			ctx.Err() == nil &&
			!errors.Is(err, analyzer.ErrInvalidConfig) &&
			!errors.Is(err, analyzer.ErrUnknownStrategy)

		if !retryable {
			e.finalize(ctx, task, run, err)
			return
		}

		e.logger.Warn("task attempt failed, retrying",
			"task_id", task.ID,
			"attempt", run.Attempt,
			"error", err,
		)

		select {
		case <-time.After(e.retryBackoff):
		case <-ctx.Done():
			e.finalize(ctx, task, run, ctx.Err())
			return
		}
	}
}

// attempt выполняет одну попытку под таймером maxExecutionTime.
//
// Analyzer запускается в отдельной горутине; результат, пришедший после
// таймаута, отбрасывается (канал буферизован, горутина не течёт).
func (e *Executor) attempt(ctx context.Context, target string, task *domain.ReviewerDef) ([]domain.Finding, error) {
	a, err := e.analyzers.Get(task.Analyzer.Strategy)
	if err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, task.MaxExecutionTime())
	defer cancel()

	req := &analyzer.Request{
		TaskID: task.ID,
		Target: target,
		Config: task.Analyzer.Config,
	}

	type result struct {
		findings []domain.Finding
		err      error
	}
	resCh := make(chan result, 1)

	go func() {
		findings, err := a.Execute(attemptCtx, req)
		resCh <- result{findings: findings, err: err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, res.err
		}
		return res.findings, nil

	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	}
}

// finalize переводит TaskRun в терминальный статус по виду ошибки.
func (e *Executor) finalize(ctx context.Context, task *domain.ReviewerDef, run *domain.TaskRun, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() != nil {
			run.MarkTimeout("group timeout")
		} else {
			run.MarkTimeout(fmt.Sprintf("exceeded max execution time (%ds)", task.TimeoutSec))
		}
	case errors.Is(err, context.Canceled):
		run.MarkTimeout("canceled")
	default:
		run.MarkFailed(err.Error())
	}

	e.logger.Warn("task finished unsuccessfully",
		"task_id", task.ID,
		"status", run.Status,
		"attempt", run.Attempt,
		"error", run.Error,
	)
}

// emit передаёт findings агрегатору через sink-канал.
func (e *Executor) emit(findings []domain.Finding) {
	if e.sink == nil {
		return
	}
	for _, f := range findings {
		e.sink <- f
	}
}
