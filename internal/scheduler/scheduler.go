package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/mq"
	"github.com/shaiso/Argus/internal/repo"
)

// Scheduler — планировщик, обрабатывающий due schedules.
type Scheduler struct {
	scheduleRepo *repo.ScheduleRepo
	runRepo      *repo.RunRepo
	graphRepo    *repo.GraphRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
	batchSize    int
}

// Config — конфигурация Scheduler.
type Config struct {
	ScheduleRepo *repo.ScheduleRepo
	RunRepo      *repo.RunRepo
	GraphRepo    *repo.GraphRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
	BatchSize    int // количество schedules за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Scheduler{
		scheduleRepo: cfg.ScheduleRepo,
		runRepo:      cfg.RunRepo,
		graphRepo:    cfg.GraphRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
		batchSize:    batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due schedules (enabled=true, next_due_at <= now)
// 2. Для каждого schedule создаёт review run
// 3. Обновляет next_due_at
// 4. Публикует review.pending в RabbitMQ
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.scheduleRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(schedules))

	var processed, created int
	for i := range schedules {
		sched := &schedules[i]

		runCreated, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		processed++
		if runCreated {
			created++
		}
	}

	s.logger.Info("scheduler tick completed",
		"due", len(schedules),
		"processed", processed,
		"runs_created", created,
	)

	return nil
}

// processSchedule обрабатывает один schedule.
// Возвращает true, если run был создан (не был дубликатом).
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) (bool, error) {
	// 1. Проверяем, что граф существует и имеет версии
	version, err := s.graphRepo.GetLatestVersion(ctx, sched.GraphID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.Warn("graph not found for schedule, skipping",
				"schedule_id", sched.ID,
				"graph_id", sched.GraphID,
			)
			return false, nil
		}
		return false, fmt.Errorf("get latest graph version: %w", err)
	}

	// 2. Ключ идемпотентности: для одного schedule и конкретного
	// времени срабатывания создаётся только один run
	idempKey := sched.IdempotencyKey(sched.NextDueAt)

	existingRun, err := s.runRepo.GetByIdempotencyKey(ctx, sched.GraphID, idempKey)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("check idempotency: %w", err)
	}

	var runCreated bool
	var runID uuid.UUID

	if existingRun != nil {
		s.logger.Debug("run already exists (idempotency)",
			"schedule_id", sched.ID,
			"run_id", existingRun.ID,
			"idempotency_key", idempKey,
		)
		runID = existingRun.ID
		runCreated = false
	} else {
		// 3. Создаём новый run
		run := &domain.Run{
			ID:             uuid.New(),
			GraphID:        sched.GraphID,
			GraphVersion:   version.Version,
			Target:         sched.Target,
			Depth:          sched.Depth,
			Status:         domain.RunPending,
			IdempotencyKey: idempKey,
			CreatedAt:      now,
		}

		if err := s.runRepo.Create(ctx, run); err != nil {
			return false, fmt.Errorf("create run: %w", err)
		}

		s.logger.Info("created run from schedule",
			"run_id", run.ID,
			"schedule_id", sched.ID,
			"graph_id", sched.GraphID,
			"graph_version", version.Version,
			"target", sched.Target,
		)

		runID = run.ID
		runCreated = true
	}

	// 4. Вычисляем следующее время выполнения
	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		s.logger.Error("failed to calculate next due, leaving schedule as is",
			"schedule_id", sched.ID,
			"error", err,
		)
		return runCreated, nil
	}

	if err := s.scheduleRepo.SetNextDue(ctx, sched.ID, nextDue); err != nil {
		return runCreated, fmt.Errorf("set next due: %w", err)
	}

	// 5. Публикуем событие в RabbitMQ (если publisher настроен и run создан)
	if s.publisher != nil && runCreated {
		if err := s.publisher.PublishReviewPending(ctx, runID); err != nil {
			// Не фатальная ошибка — run уже создан в БД,
			// worker подхватит его через polling
			s.logger.Warn("failed to publish review.pending",
				"run_id", runID,
				"error", err,
			)
		}
	}

	return runCreated, nil
}
