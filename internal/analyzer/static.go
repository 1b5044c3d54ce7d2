package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaiso/Argus/internal/domain"
)

// StrategyStatic — тип analyzer'а с фиксированными findings.
const StrategyStatic = "static"

// StaticAnalyzer возвращает findings прямо из конфигурации.
// Используется в тестах графов и для демонстрационных прогонов.
//
// Конфигурация:
//
//	{
//	    "findings": [
//	        {"severity": "low", "category": "style", "file": "a.go", "message": "..."}
//	    ]
//	}
type StaticAnalyzer struct{}

// NewStaticAnalyzer создаёт StaticAnalyzer.
func NewStaticAnalyzer() *StaticAnalyzer {
	return &StaticAnalyzer{}
}

// Strategy возвращает тип analyzer'а.
func (a *StaticAnalyzer) Strategy() string {
	return StrategyStatic
}

// Execute декодирует findings из конфигурации.
func (a *StaticAnalyzer) Execute(ctx context.Context, req *Request) ([]domain.Finding, error) {
	raw, ok := req.Config["findings"]
	if !ok {
		return nil, nil
	}

	// Конфигурация приходит как []any из YAML/JSON — прогоняем через
	// json для декодирования в доменный тип.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return parseFindings(data, req.TaskID)
}

// Func — адаптер функции в Analyzer под именованной стратегией.
// Удобен для стабов в тестах executor'а и orchestrator'а.
type Func struct {
	Name string
	Fn   func(ctx context.Context, req *Request) ([]domain.Finding, error)
}

// Strategy возвращает имя стратегии.
func (f Func) Strategy() string {
	return f.Name
}

// Execute вызывает обёрнутую функцию.
func (f Func) Execute(ctx context.Context, req *Request) ([]domain.Finding, error) {
	return f.Fn(ctx, req)
}
