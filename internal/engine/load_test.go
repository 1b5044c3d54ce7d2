package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/Argus/internal/domain"
)

const graphYAML = `
name: web-review
description: Review for web projects
groups:
  - name: analysis
    mode: parallel
    timeout_sec: 120
reviewers:
  - id: lint
    timeout_sec: 60
    group: analysis
    retry: optional
    analyzer:
      strategy: command
      config:
        command: eslint-adapter
  - id: a11y
    timeout_sec: 90
    group: analysis
    retry: critical
    depends_on: [lint]
    predicate: has-web-assets
    analyzer:
      strategy: http
      config:
        url: https://a11y.internal/review
depths:
  quick: [lint]
`

func TestParseGraph(t *testing.T) {
	graph, err := ParseGraph([]byte(graphYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if graph.Name != "web-review" {
		t.Errorf("expected name web-review, got %s", graph.Name)
	}
	if len(graph.Reviewers) != 2 {
		t.Fatalf("expected 2 reviewers, got %d", len(graph.Reviewers))
	}

	a11y := graph.ReviewerByID("a11y")
	if a11y == nil {
		t.Fatal("a11y reviewer not found")
	}
	if a11y.Retry != domain.RetryCritical {
		t.Errorf("expected critical retry, got %s", a11y.Retry)
	}
	if a11y.Predicate != "has-web-assets" {
		t.Errorf("predicate not parsed: %q", a11y.Predicate)
	}
	if a11y.Analyzer.Strategy != "http" {
		t.Errorf("analyzer strategy not parsed: %q", a11y.Analyzer.Strategy)
	}
	if url, _ := a11y.Analyzer.Config["url"].(string); url != "https://a11y.internal/review" {
		t.Errorf("analyzer config not parsed: %v", a11y.Analyzer.Config)
	}

	if len(graph.Depths["quick"]) != 1 {
		t.Errorf("depths not parsed: %v", graph.Depths)
	}

	// Распарсенный граф проходит валидацию
	if _, err := Load(graph, "", NewPredicateSet()); err != nil {
		t.Errorf("parsed graph should be valid: %v", err)
	}
}

func TestParseGraph_InvalidYAML(t *testing.T) {
	if _, err := ParseGraph([]byte("{not yaml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadGraphFile_DefaultName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go-service.yaml")

	data := `
groups:
  - name: g
    mode: parallel
    timeout_sec: 60
reviewers:
  - id: lint
    timeout_sec: 30
    group: g
    retry: optional
    analyzer:
      strategy: static
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	graph, err := LoadGraphFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Имя по умолчанию — имя файла без расширения
	if graph.Name != "go-service" {
		t.Errorf("expected default name go-service, got %s", graph.Name)
	}
}

func TestListGraphFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("name: x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := ListGraphFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 graph files, got %v", paths)
	}
}

func TestPredicates_FileDetection(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Файлы в скрытых директориях не учитываются
	hidden := filepath.Join(dir, ".git")
	if err := os.Mkdir(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(hidden, "config.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	preds := NewPredicateSet()

	check := func(name string, want bool) {
		t.Helper()
		fn, ok := preds.Lookup(name)
		if !ok {
			t.Fatalf("predicate %s not registered", name)
		}
		got, err := fn(dir)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	check("always", true)
	check("has-go-files", true)
	check("has-yaml-files", false)
	check("has-dockerfile", false)
}
