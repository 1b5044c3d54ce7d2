package analyzer

import (
	"context"

	"github.com/shaiso/Argus/internal/domain"
)

// Analyzer — непрозрачный внешний вызов анализа.
//
// Планировщик и агрегатор не заглядывают внутрь: analyzer получает
// target и конфигурацию, возвращает findings или ошибку. Analyzer обязан
// наблюдать ctx.Done() — executor отменяет контекст по таймауту.
type Analyzer interface {
	// Strategy возвращает тип analyzer'а.
	Strategy() string

	// Execute выполняет анализ target'а.
	Execute(ctx context.Context, req *Request) ([]domain.Finding, error)
}

// Request — входные данные для анализа.
type Request struct {
	// TaskID — ID reviewer'а (проставляется в findings как источник).
	TaskID string

	// Target — цель ревью (путь к директории или ссылка).
	Target string

	// Config — непрозрачная конфигурация из AnalyzerDef.
	Config map[string]any
}

// ConfigString извлекает строковое значение из конфигурации.
func (r *Request) ConfigString(key string) string {
	if v, ok := r.Config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ConfigStrings извлекает список строк из конфигурации.
func (r *Request) ConfigStrings(key string) []string {
	v, ok := r.Config[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
