package engine

import (
	"fmt"
	"sort"

	"github.com/shaiso/Argus/internal/domain"
)

// Пресеты глубины.
const (
	DepthQuick    = "quick"
	DepthStandard = "standard"
	DepthDeep     = "deep"
)

// TaskSet — валидированный, неизменяемый набор задач одного run'а.
//
// TaskSet создаётся Load'ом один раз и дальше только читается:
// планировщик и executor не мутируют определения.
type TaskSet struct {
	// GraphName — имя исходного графа.
	GraphName string

	// Depth — применённый пресет глубины.
	Depth string

	reviewers map[string]*domain.ReviewerDef
	groups    map[string]*domain.GroupDef

	// order — ID reviewer'ов в порядке объявления (для детерминизма).
	order []string
}

// Load валидирует граф и возвращает TaskSet для запрошенной глубины.
//
// Проверяет:
//   - наличие reviewer'ов и уникальность их ID
//   - корректность таймаутов, retry-классов и analyzer-стратегий
//   - объявленность групп и их таймауты
//   - валидность depends_on (существование, отсутствие self-dependency)
//   - отсутствие циклов (алгоритм Кана)
//   - известность предикатов
//
// Любая ошибка — *ConfigError; выполнение в этом случае не начинается.
func Load(graph *domain.ReviewGraph, depth string, predicates *PredicateSet) (*TaskSet, error) {
	if graph == nil || len(graph.Reviewers) == 0 {
		return nil, NewConfigError("", "reviewers", "graph has no reviewers", ErrEmptyGraph)
	}

	groups, err := validateGroups(graph)
	if err != nil {
		return nil, err
	}

	all, order, err := validateReviewers(graph, groups, predicates)
	if err != nil {
		return nil, err
	}

	if err := validateGroupTimeouts(graph, groups); err != nil {
		return nil, err
	}

	if err := detectCycle(all, order); err != nil {
		return nil, err
	}

	ts := &TaskSet{
		GraphName: graph.Name,
		Depth:     depth,
		reviewers: all,
		groups:    groups,
		order:     order,
	}

	if depth != "" && depth != DepthDeep {
		return ts.subset(graph, depth)
	}

	// deep без явного объявления означает весь граф.
	if depth == DepthDeep {
		if ids, ok := graph.Depths[DepthDeep]; ok && len(ids) > 0 {
			return ts.subset(graph, depth)
		}
	}

	return ts, nil
}

// Reviewer возвращает определение по ID.
func (ts *TaskSet) Reviewer(id string) *domain.ReviewerDef {
	return ts.reviewers[id]
}

// Group возвращает определение группы по имени.
func (ts *TaskSet) Group(name string) *domain.GroupDef {
	return ts.groups[name]
}

// IDs возвращает ID всех reviewer'ов в порядке объявления.
func (ts *TaskSet) IDs() []string {
	ids := make([]string, len(ts.order))
	copy(ids, ts.order)
	return ids
}

// Size возвращает количество reviewer'ов в наборе.
func (ts *TaskSet) Size() int {
	return len(ts.reviewers)
}

// subset строит TaskSet из подмножества глубины,
// замкнутого по транзитивным зависимостям.
func (ts *TaskSet) subset(graph *domain.ReviewGraph, depth string) (*TaskSet, error) {
	ids, ok := graph.Depths[depth]
	if !ok {
		return nil, NewConfigError("", "depth",
			fmt.Sprintf("depth preset not declared: %s", depth), ErrUnknownDepth)
	}

	// Замыкание по зависимостям: выбранный reviewer тянет свои
	// depends_on рекурсивно, иначе подмножество не было бы валидным графом.
	selected := make(map[string]bool)
	var include func(id string)
	include = func(id string) {
		if selected[id] {
			return
		}
		selected[id] = true
		for _, dep := range ts.reviewers[id].DependsOn {
			include(dep)
		}
	}
	for _, id := range ids {
		if _, exists := ts.reviewers[id]; !exists {
			return nil, NewConfigError(id, "depths",
				fmt.Sprintf("depth %s references unknown reviewer: %s", depth, id),
				ErrUnknownDependency)
		}
		include(id)
	}

	sub := &TaskSet{
		GraphName: ts.GraphName,
		Depth:     depth,
		reviewers: make(map[string]*domain.ReviewerDef, len(selected)),
		groups:    ts.groups,
	}
	for _, id := range ts.order {
		if selected[id] {
			sub.reviewers[id] = ts.reviewers[id]
			sub.order = append(sub.order, id)
		}
	}

	return sub, nil
}

// validateGroups проверяет объявления групп.
func validateGroups(graph *domain.ReviewGraph) (map[string]*domain.GroupDef, error) {
	groups := make(map[string]*domain.GroupDef, len(graph.Groups))

	for i := range graph.Groups {
		g := &graph.Groups[i]

		if _, dup := groups[g.Name]; dup {
			return nil, NewConfigError("", "groups",
				fmt.Sprintf("duplicate group name: %s", g.Name), ErrDuplicateGroup)
		}

		switch g.Mode {
		case domain.GroupModeParallel, domain.GroupModeSequential:
		default:
			return nil, NewConfigError("", "groups",
				fmt.Sprintf("group %s has invalid mode: %q", g.Name, g.Mode), ErrInvalidGroupMode)
		}

		groups[g.Name] = g
	}

	return groups, nil
}

// validateReviewers проверяет каждое определение и зависимости.
func validateReviewers(graph *domain.ReviewGraph, groups map[string]*domain.GroupDef, predicates *PredicateSet) (map[string]*domain.ReviewerDef, []string, error) {
	all := make(map[string]*domain.ReviewerDef, len(graph.Reviewers))
	order := make([]string, 0, len(graph.Reviewers))

	for i := range graph.Reviewers {
		r := &graph.Reviewers[i]

		if r.ID == "" {
			return nil, nil, NewConfigError("", "id", "reviewer has empty ID", ErrEmptyTaskID)
		}
		if _, dup := all[r.ID]; dup {
			return nil, nil, NewConfigError(r.ID, "id",
				fmt.Sprintf("duplicate reviewer ID: %s", r.ID), ErrDuplicateTask)
		}
		if r.TimeoutSec <= 0 {
			return nil, nil, NewConfigError(r.ID, "timeout_sec",
				"timeout must be positive", ErrInvalidTimeout)
		}
		if _, ok := groups[r.Group]; !ok {
			return nil, nil, NewConfigError(r.ID, "group",
				fmt.Sprintf("unknown group: %s", r.Group), ErrUnknownGroup)
		}

		switch r.Retry {
		case domain.RetryCritical, domain.RetryOptional:
		default:
			return nil, nil, NewConfigError(r.ID, "retry",
				fmt.Sprintf("unknown retry class: %q", r.Retry), ErrUnknownRetryClass)
		}

		if r.Analyzer.Strategy == "" {
			return nil, nil, NewConfigError(r.ID, "analyzer",
				"analyzer strategy is required", ErrUnknownAnalyzer)
		}

		if r.Predicate != "" && predicates != nil && !predicates.Has(r.Predicate) {
			return nil, nil, NewConfigError(r.ID, "predicate",
				fmt.Sprintf("unknown predicate: %s", r.Predicate), ErrUnknownPredicate)
		}

		all[r.ID] = r
		order = append(order, r.ID)
	}

	// Зависимости валидируем вторым проходом — forward-ссылки разрешены.
	for _, id := range order {
		r := all[id]
		for _, dep := range r.DependsOn {
			if dep == r.ID {
				return nil, nil, NewConfigError(r.ID, "depends_on",
					"reviewer depends on itself", ErrSelfDependency)
			}
			if _, ok := all[dep]; !ok {
				return nil, nil, NewConfigError(r.ID, "depends_on",
					fmt.Sprintf("depends on unknown reviewer: %s", dep), ErrUnknownDependency)
			}
		}
	}

	return all, order, nil
}

// validateGroupTimeouts проверяет, что таймаут группы достаточен:
// для parallel — не меньше максимума таймаутов участников,
// для sequential — не меньше суммы.
func validateGroupTimeouts(graph *domain.ReviewGraph, groups map[string]*domain.GroupDef) error {
	maxMember := make(map[string]int)
	sumMember := make(map[string]int)

	for i := range graph.Reviewers {
		r := &graph.Reviewers[i]
		if r.TimeoutSec > maxMember[r.Group] {
			maxMember[r.Group] = r.TimeoutSec
		}
		sumMember[r.Group] += r.TimeoutSec
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := groups[name]

		required := maxMember[name]
		if g.Mode == domain.GroupModeSequential {
			required = sumMember[name]
		}
		if required > 0 && g.TimeoutSec < required {
			return NewConfigError("", "groups",
				fmt.Sprintf("group %s timeout %ds is below required %ds", name, g.TimeoutSec, required),
				ErrGroupTimeout)
		}
	}

	return nil
}

// detectCycle выполняет алгоритм Кана: если не удалось потребить все узлы,
// в графе есть цикл. Ошибка называет одного из участников цикла.
func detectCycle(all map[string]*domain.ReviewerDef, order []string) error {
	indegree := make(map[string]int, len(all))
	dependents := make(map[string][]string, len(all))

	for _, id := range order {
		for _, dep := range all[id].DependsOn {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := make([]string, 0, len(all))
	for _, id := range order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	consumed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		consumed++

		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if consumed != len(all) {
		// Называем участника цикла детерминированно: первый по объявлению
		// с ненулевым indegree.
		for _, id := range order {
			if indegree[id] > 0 {
				return NewConfigError(id, "depends_on",
					fmt.Sprintf("reviewer %s is part of a dependency cycle", id),
					ErrCyclicDependency)
			}
		}
		return NewConfigError("", "depends_on", "dependency cycle detected", ErrCyclicDependency)
	}

	return nil
}
