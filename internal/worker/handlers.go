package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
	"github.com/shaiso/Argus/internal/mq"
	"github.com/shaiso/Argus/internal/orchestrator"
	"github.com/shaiso/Argus/internal/repo"
	"github.com/shaiso/Argus/internal/telemetry"
)

// handleReviewPending обрабатывает событие о новом run из очереди reviews.pending.
func (w *Worker) handleReviewPending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.ReviewPendingPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse review.pending payload", "error", err)
		return err
	}

	w.logger.Debug("received review.pending event", "run_id", payload.RunID)

	if err := w.processRun(ctx, payload.RunID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrRunNotPending) {
			w.logger.Debug("run not processed", "run_id", payload.RunID, "reason", err)
			return nil
		}
		w.logger.Error("failed to process run", "run_id", payload.RunID, "error", err)
		return err
	}

	return nil
}

// processRun загружает run из БД, выполняет ревью и сохраняет результат.
func (w *Worker) processRun(ctx context.Context, runID uuid.UUID) error {
	// 1. Загружаем run из БД
	run, err := w.runRepo.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("get run: %w", err)
	}

	// 2. Проверяем статус: run мог быть подхвачен polling'ом и из очереди
	if run.Status != domain.RunPending {
		return ErrRunNotPending
	}

	// 3. Помечаем как running
	run.MarkRunning()
	if err := w.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to running: %w", err)
	}

	logger := telemetry.WithRunID(w.logger, run.ID.String())
	logger.Info("review run started",
		"graph_id", run.GraphID,
		"graph_version", run.GraphVersion,
		"target", run.Target,
		"depth", run.Depth,
	)

	// 4. Загружаем версию графа
	version, err := w.graphRepo.GetVersion(ctx, run.GraphID, run.GraphVersion)
	if err != nil {
		return w.failRun(ctx, run, fmt.Errorf("get graph version: %w", err))
	}

	started := time.Now()

	// 5. Выполняем ревью in-process
	report, err := w.engine.Run(ctx, orchestrator.Request{
		Graph:  &version.Spec,
		Target: run.Target,
		Depth:  run.Depth,
	})
	if err != nil {
		// Единственный источник ошибки — невалидная конфигурация графа
		var cfgErr *engine.ConfigError
		if errors.As(err, &cfgErr) {
			return w.failRun(ctx, run, cfgErr)
		}
		return w.failRun(ctx, run, err)
	}

	// 6. Сохраняем отчёт и findings
	run.MarkSucceeded(report)
	if err := w.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to succeeded: %w", err)
	}

	if w.findingRepo != nil {
		if err := w.findingRepo.DeleteByRun(ctx, run.ID); err != nil {
			logger.Warn("failed to clear stale findings", "error", err)
		}
		if err := w.findingRepo.CreateBatch(ctx, run.ID, report.Findings); err != nil {
			logger.Warn("failed to persist findings", "error", err)
		}
	}

	w.recordMetrics(report, time.Since(started))

	logger.Info("review run succeeded",
		"findings", report.Metrics.TotalFindings,
		"tasks_failed", report.Metrics.TasksFailed,
		"tasks_skipped", report.Metrics.TasksSkipped,
		"duration", report.Metrics.Duration,
	)

	return w.publishCompletion(ctx, run, "")
}

// failRun помечает run как FAILED и публикует событие завершения.
func (w *Worker) failRun(ctx context.Context, run *domain.Run, cause error) error {
	run.MarkFailed(cause.Error())
	if err := w.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to failed: %w", err)
	}

	telemetry.ReviewsTotal.WithLabelValues(string(domain.RunFailed)).Inc()

	w.logger.Warn("review run failed",
		"run_id", run.ID,
		"error", cause,
	)

	return w.publishCompletion(ctx, run, cause.Error())
}

// publishCompletion публикует событие review.completed.
func (w *Worker) publishCompletion(ctx context.Context, run *domain.Run, errMsg string) error {
	if w.publisher == nil {
		w.logger.Debug("publisher not available, skipping review.completed publish",
			"run_id", run.ID,
		)
		return nil
	}

	total := 0
	if run.Report != nil {
		total = run.Report.Metrics.TotalFindings
	}

	payload := mq.ReviewCompletedPayload{
		RunID:         run.ID,
		Status:        string(run.Status),
		TotalFindings: total,
		Error:         errMsg,
	}

	if err := w.publisher.PublishReviewCompleted(ctx, payload); err != nil {
		w.logger.Warn("failed to publish review.completed",
			"run_id", run.ID,
			"error", err,
		)
		// Не возвращаем ошибку — run обновлён в БД, потребители подхватят через API
	}

	return nil
}

// recordMetrics фиксирует метрики завершённого ревью.
func (w *Worker) recordMetrics(report *domain.Report, elapsed time.Duration) {
	telemetry.ReviewsTotal.WithLabelValues(string(domain.RunSucceeded)).Inc()
	telemetry.ReviewDuration.Observe(elapsed.Seconds())

	m := report.Metrics
	telemetry.TasksTotal.WithLabelValues(string(domain.TaskCompleted)).Add(float64(m.TasksCompleted))
	telemetry.TasksTotal.WithLabelValues(string(domain.TaskFailed)).Add(float64(m.TasksFailed))
	telemetry.TasksTotal.WithLabelValues(string(domain.TaskSkipped)).Add(float64(m.TasksSkipped))
	telemetry.RetriesTotal.Add(float64(m.Retries))

	for _, f := range report.Findings {
		telemetry.FindingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}
}
