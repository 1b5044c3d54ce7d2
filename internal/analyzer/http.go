package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shaiso/Argus/internal/domain"
)

// StrategyHTTP — тип analyzer'а, вызывающего удалённый сервис анализа.
const StrategyHTTP = "http"

// maxResponseSize — лимит на тело ответа сервиса анализа.
const maxResponseSize = 10 << 20 // 10 MB

// HTTPAnalyzer отправляет ссылку на target удалённому сервису анализа
// и ожидает JSON-массив findings в ответ.
//
// Конфигурация:
//
//	{
//	    "url": "https://analysis.internal/v1/review",
//	    "headers": {"Authorization": "Bearer ..."}
//	}
type HTTPAnalyzer struct {
	client *http.Client
}

// NewHTTPAnalyzer создаёт HTTPAnalyzer с клиентом по умолчанию.
// Таймауты не задаются на клиенте — их контролирует контекст executor'а.
func NewHTTPAnalyzer() *HTTPAnalyzer {
	return &HTTPAnalyzer{client: &http.Client{}}
}

// Strategy возвращает тип analyzer'а.
func (a *HTTPAnalyzer) Strategy() string {
	return StrategyHTTP
}

// analysisRequest — тело запроса к сервису анализа.
type analysisRequest struct {
	TaskID string `json:"task_id"`
	Target string `json:"target"`
}

// Execute выполняет POST к сервису анализа.
func (a *HTTPAnalyzer) Execute(ctx context.Context, req *Request) ([]domain.Finding, error) {
	url := req.ConfigString("url")
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidConfig)
	}

	body, err := json.Marshal(analysisRequest{TaskID: req.TaskID, Target: req.Target})
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if headers, ok := req.Config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				httpReq.Header.Set(k, s)
			}
		}
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, truncate(string(data), 512))
	}

	return parseFindings(data, req.TaskID)
}
