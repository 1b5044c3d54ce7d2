// Package worker выполняет review runs.
//
// # Обзор
//
// Worker — stateless компонент системы Argus, который выполняет
// review runs, созданные через API или Scheduler. Worker отвечает за:
//
//   - Получение runs из очереди RabbitMQ (event-driven)
//   - Периодическую проверку PENDING runs в БД (polling fallback)
//   - Выполнение ревью целиком in-process через orchestrator.Engine
//   - Сохранение отчёта (runs.report JSONB) и findings (строками) в БД
//   - Публикацию события review.completed
//
// Workers масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди reviews.pending. Один run выполняется
// одним worker'ом целиком: prefetch = 1, параллелизм внутри run'а
// обеспечивает пул executor'а.
//
// # Использование
//
//	w := worker.New(worker.Config{
//	    RunRepo:     runRepo,
//	    GraphRepo:   graphRepo,
//	    FindingRepo: findingRepo,
//	    Publisher:   publisher,
//	    Conn:        mqConn,
//	    Logger:      logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Обработка run
//
//  1. Получение run (из очереди или polling)
//  2. Загрузка run из БД, проверка статуса PENDING
//  3. Перевод в RUNNING
//  4. Загрузка версии графа из graph_versions
//  5. Выполнение через orchestrator.Engine.Run
//  6. Успех → MarkSucceeded с отчётом, findings в БД, publish review.completed
//  7. ConfigError → MarkFailed, publish review.completed(FAILED)
//
// Упавшие или пропущенные reviewers НЕ делают run FAILED: отчёт
// фиксирует их в skipped/metrics, а run завершается SUCCEEDED.
// FAILED зарезервирован для невалидной конфигурации графа.
//
// # Retry
//
// Retry отдельных reviewers выполняется внутри executor'а (in-process),
// а не через requeue run'а в RabbitMQ. Nack с requeue используется
// только для инфраструктурных ошибок до старта ревью (БД недоступна).
package worker
