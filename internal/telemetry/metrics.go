package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики worker'а. Экспортируются на /metrics каждого сервиса.
var (
	// ReviewsTotal — завершённые ревью по итоговому статусу.
	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "argus_reviews_total",
		Help: "Completed reviews by final status",
	}, []string{"status"})

	// TasksTotal — выполненные задачи ревью по терминальному статусу.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "argus_tasks_total",
		Help: "Review tasks by terminal status",
	}, []string{"status"})

	// FindingsTotal — findings после дедупликации, по severity.
	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "argus_findings_total",
		Help: "Deduplicated findings by severity",
	}, []string{"severity"})

	// RetriesTotal — повторные попытки critical-задач.
	RetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "argus_task_retries_total",
		Help: "Retry attempts across all review tasks",
	})

	// ReviewDuration — длительность ревью от валидации до отчёта.
	ReviewDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "argus_review_duration_seconds",
		Help:    "Review duration from validation to report",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
