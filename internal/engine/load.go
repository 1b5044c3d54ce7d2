package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Argus/internal/domain"
)

// ParseGraph парсит YAML-описание графа.
func ParseGraph(data []byte) (*domain.ReviewGraph, error) {
	var graph domain.ReviewGraph
	if err := yaml.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("parse graph yaml: %w", err)
	}
	return &graph, nil
}

// LoadGraphFile читает и парсит граф из файла.
// Имя графа по умолчанию — имя файла без расширения.
func LoadGraphFile(path string) (*domain.ReviewGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	graph, err := ParseGraph(data)
	if err != nil {
		return nil, err
	}

	if graph.Name == "" {
		base := filepath.Base(path)
		graph.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return graph, nil
}

// ListGraphFiles возвращает пути всех графов (*.yaml, *.yml) в директории.
func ListGraphFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read graph dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
