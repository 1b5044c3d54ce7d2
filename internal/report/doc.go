// Package report рендерит итоговый отчёт ревью.
//
// Отчёт группирует findings по ярусам серьёзности, всегда включает
// секцию Skipped и метрики, и детерминирован при одинаковых входах —
// это требование воспроизводимых тестовых прогонов.
package report
