package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/shaiso/Argus/internal/domain"
)

// StrategyCommand — тип analyzer'а, запускающего внешний инструмент.
const StrategyCommand = "command"

// CommandAnalyzer запускает внешний инструмент против target'а
// и парсит findings из его stdout (JSON-массив).
//
// Конфигурация:
//
//	{
//	    "command": "golangci-lint-adapter",
//	    "args": ["--format", "argus"]
//	}
//
// Target передаётся последним аргументом. Инструмент обязан печатать
// JSON-массив findings; любой другой вывод — ошибка ErrBadOutput.
type CommandAnalyzer struct{}

// NewCommandAnalyzer создаёт CommandAnalyzer.
func NewCommandAnalyzer() *CommandAnalyzer {
	return &CommandAnalyzer{}
}

// Strategy возвращает тип analyzer'а.
func (a *CommandAnalyzer) Strategy() string {
	return StrategyCommand
}

// Execute запускает команду и парсит findings.
// Команда получает контекст — по отмене процесс убивается.
func (a *CommandAnalyzer) Execute(ctx context.Context, req *Request) ([]domain.Finding, error) {
	command := req.ConfigString("command")
	if command == "" {
		return nil, fmt.Errorf("%w: command is required", ErrInvalidConfig)
	}

	args := append(req.ConfigStrings("args"), req.Target)

	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("run %s: %w (stderr: %s)", command, err, truncate(stderr.String(), 512))
	}

	return parseFindings(stdout.Bytes(), req.TaskID)
}

// parseFindings декодирует JSON-массив findings и проставляет источник.
func parseFindings(data []byte, taskID string) ([]domain.Finding, error) {
	var findings []domain.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}

	for i := range findings {
		findings[i].SourceTaskID = taskID
	}
	return findings, nil
}

// truncate обрезает строку для сообщений об ошибках.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
