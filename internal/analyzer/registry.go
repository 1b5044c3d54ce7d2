package analyzer

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр analyzer'ов по стратегии.
// Потокобезопасен: executor читает его из нескольких воркеров.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]Analyzer
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

// DefaultRegistry создаёт реестр со стандартными стратегиями:
// command, http, static.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewCommandAnalyzer())
	r.Register(NewHTTPAnalyzer())
	r.Register(NewStaticAnalyzer())
	return r
}

// Register регистрирует analyzer. Существующая стратегия перезаписывается.
func (r *Registry) Register(a Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[a.Strategy()] = a
}

// Get возвращает analyzer по стратегии.
func (r *Registry) Get(strategy string) (Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.analyzers[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	return a, nil
}

// Strategies возвращает отсортированный список зарегистрированных стратегий.
func (r *Registry) Strategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.analyzers))
	for s := range r.analyzers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
