package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaiso/Argus/internal/domain"
)

// --- Registry ---

func TestRegistry_GetAndRegister(t *testing.T) {
	r := DefaultRegistry()

	for _, strategy := range []string{StrategyCommand, StrategyHTTP, StrategyStatic} {
		if _, err := r.Get(strategy); err != nil {
			t.Errorf("default registry should have %s: %v", strategy, err)
		}
	}

	_, err := r.Get("quantum")
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	strategies := r.Strategies()
	want := []string{"command", "http", "static"}
	if len(strategies) != len(want) {
		t.Fatalf("expected %v, got %v", want, strategies)
	}
	for i := range want {
		if strategies[i] != want[i] {
			t.Errorf("strategies should be sorted: %v", strategies)
		}
	}
}

// --- StaticAnalyzer ---

func TestStaticAnalyzer_FindingsFromConfig(t *testing.T) {
	a := NewStaticAnalyzer()

	// Конфигурация приходит как []any — так её отдаёт YAML-парсер
	req := &Request{
		TaskID: "demo",
		Target: "/tmp/repo",
		Config: map[string]any{
			"findings": []any{
				map[string]any{
					"severity": "high",
					"category": "security",
					"file":     "auth.go",
					"line":     7,
					"message":  "hardcoded secret",
				},
			},
		},
	}

	findings, err := a.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}

	f := findings[0]
	if f.Severity != domain.SeverityHigh || f.File != "auth.go" || f.Line != 7 {
		t.Errorf("finding decoded incorrectly: %+v", f)
	}
	// Источник проставляется из TaskID, не из конфигурации
	if f.SourceTaskID != "demo" {
		t.Errorf("expected source demo, got %s", f.SourceTaskID)
	}
}

func TestStaticAnalyzer_NoFindingsKey(t *testing.T) {
	a := NewStaticAnalyzer()

	findings, err := a.Execute(context.Background(), &Request{TaskID: "x", Config: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findings != nil {
		t.Errorf("expected nil findings, got %v", findings)
	}
}

// --- CommandAnalyzer ---

func TestCommandAnalyzer_RequiresCommand(t *testing.T) {
	a := NewCommandAnalyzer()

	_, err := a.Execute(context.Background(), &Request{TaskID: "x", Config: map[string]any{}})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestCommandAnalyzer_ParsesStdout(t *testing.T) {
	a := NewCommandAnalyzer()

	// sh -c игнорирует target, добавляемый последним аргументом
	req := &Request{
		TaskID: "lint",
		Target: "/tmp/repo",
		Config: map[string]any{
			"command": "sh",
			"args": []any{
				"-c",
				`echo '[{"severity":"low","category":"style","file":"a.go","message":"nit"}]'`,
			},
		},
	}

	findings, err := a.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 || findings[0].SourceTaskID != "lint" {
		t.Errorf("unexpected findings: %+v", findings)
	}
}

func TestCommandAnalyzer_BadOutput(t *testing.T) {
	a := NewCommandAnalyzer()

	req := &Request{
		TaskID: "lint",
		Target: "/tmp/repo",
		Config: map[string]any{
			"command": "sh",
			"args":    []any{"-c", "echo not json"},
		},
	}

	_, err := a.Execute(context.Background(), req)
	if !errors.Is(err, ErrBadOutput) {
		t.Errorf("expected ErrBadOutput, got %v", err)
	}
}

// --- HTTPAnalyzer ---

func TestHTTPAnalyzer_Success(t *testing.T) {
	var gotBody analysisRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode([]domain.Finding{{
			Severity: domain.SeverityMedium,
			Category: domain.CategoryPerformance,
			File:     "db.go",
			Line:     12,
			Message:  "n+1 query",
		}})
	}))
	defer server.Close()

	a := NewHTTPAnalyzer()
	req := &Request{
		TaskID: "perf",
		Target: "https://example.com/repo",
		Config: map[string]any{
			"url":     server.URL,
			"headers": map[string]any{"Authorization": "Bearer token"},
		},
	}

	findings, err := a.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 || findings[0].SourceTaskID != "perf" {
		t.Errorf("unexpected findings: %+v", findings)
	}

	if gotBody.TaskID != "perf" || gotBody.Target != "https://example.com/repo" {
		t.Errorf("request body mismatch: %+v", gotBody)
	}
	if gotAuth != "Bearer token" {
		t.Errorf("custom header not sent, got %q", gotAuth)
	}
}

func TestHTTPAnalyzer_RequiresURL(t *testing.T) {
	a := NewHTTPAnalyzer()

	_, err := a.Execute(context.Background(), &Request{TaskID: "x", Config: map[string]any{}})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestHTTPAnalyzer_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	a := NewHTTPAnalyzer()
	_, err := a.Execute(context.Background(), &Request{
		TaskID: "x",
		Config: map[string]any{"url": server.URL},
	})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
