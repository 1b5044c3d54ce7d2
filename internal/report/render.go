package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shaiso/Argus/internal/domain"
)

// actionPlanSize — количество позиций в action plan.
const actionPlanSize = 5

// Format — формат вывода отчёта.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Render выводит отчёт в указанном формате.
// Вывод детерминирован: одинаковый Report даёт байт-в-байт одинаковый текст.
func Render(w io.Writer, r *domain.Report, format Format) error {
	if format == FormatJSON {
		return RenderJSON(w, r)
	}
	return RenderText(w, r)
}

// RenderJSON выводит отчёт как JSON с отступами.
func RenderJSON(w io.Writer, r *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderText выводит отчёт в текстовом виде:
// заголовок, ярусы по серьёзности, action plan, skipped-секция, метрики.
func RenderText(w io.Writer, r *domain.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Review report: %s\n", r.GraphName)
	fmt.Fprintf(&b, "Target: %s\n", r.Target)
	if r.Depth != "" {
		fmt.Fprintf(&b, "Depth: %s\n", r.Depth)
	}
	b.WriteString("\n")

	tiers := r.BySeverity()
	for _, sev := range domain.Severities() {
		findings := tiers[sev]
		if len(findings) == 0 {
			continue
		}

		fmt.Fprintf(&b, "=== %s (%d) ===\n", strings.ToUpper(string(sev)), len(findings))
		for _, f := range findings {
			writeFinding(&b, &f)
		}
		b.WriteString("\n")
	}

	if len(r.Findings) == 0 {
		b.WriteString("No findings.\n\n")
	}

	writeActionPlan(&b, r)
	writeSkipped(&b, r)
	writeMetrics(&b, r)

	_, err := io.WriteString(w, b.String())
	return err
}

// writeFinding выводит одну строку finding'а.
func writeFinding(b *strings.Builder, f *domain.Finding) {
	loc := f.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	fmt.Fprintf(b, "  %-40s [%s] %s (score %d, by %s)\n",
		loc, f.Category, f.Message, f.Score(), f.SourceTaskID)
	if f.Suggestion != "" {
		fmt.Fprintf(b, "      fix: %s\n", f.Suggestion)
	}
}

// writeActionPlan выводит топ findings с рекомендациями.
func writeActionPlan(b *strings.Builder, r *domain.Report) {
	if len(r.Findings) == 0 {
		return
	}

	b.WriteString("Action plan:\n")
	n := min(actionPlanSize, len(r.Findings))
	for i := 0; i < n; i++ {
		f := &r.Findings[i]
		action := f.Suggestion
		if action == "" {
			action = f.Message
		}
		fmt.Fprintf(b, "  %d. [%s/%s] %s — %s\n", i+1, f.Severity, f.Category, f.File, action)
	}
	b.WriteString("\n")
}

// writeSkipped выводит секцию пропущенных задач.
// Секция присутствует всегда — пустая явно помечается.
func writeSkipped(b *strings.Builder, r *domain.Report) {
	b.WriteString("Skipped:\n")
	if len(r.Skipped) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(b, "  - %s: %s\n", s.TaskID, s.Reason)
	}
	b.WriteString("\n")
}

// writeMetrics выводит итоговые метрики.
func writeMetrics(b *strings.Builder, r *domain.Report) {
	m := r.Metrics
	fmt.Fprintf(b, "Metrics: findings=%d run=%d completed=%d failed=%d skipped=%d retries=%d malformed=%d duration=%s\n",
		m.TotalFindings,
		m.TasksRun,
		m.TasksCompleted,
		m.TasksFailed,
		m.TasksSkipped,
		m.Retries,
		m.MalformedFindings,
		m.Duration.Round(time.Millisecond),
	)
}
