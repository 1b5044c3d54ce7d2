package engine

import (
	"sort"

	"github.com/shaiso/Argus/internal/domain"
)

// Phase — набор взаимно независимых reviewer'ов.
//
// Фаза k содержит задачи, все зависимости которых лежат в фазах 0..k-1.
// Фазы выполняются строго последовательно; порядок задач внутри фазы
// детерминирован (группа, затем ID) для воспроизводимых отчётов и логов.
type Phase struct {
	// Index — номер фазы (с нуля).
	Index int

	// Tasks — задачи фазы в детерминированном порядке.
	Tasks []*domain.ReviewerDef
}

// Schedule разбивает TaskSet на упорядоченный список фаз
// повторным снятием узлов с нулевым indegree (алгоритм Кана).
//
// Schedule — чистая функция: после валидации Registry она не может
// завершиться ошибкой, ничего не мутирует и детерминирована.
func Schedule(ts *TaskSet) []Phase {
	indegree := make(map[string]int, ts.Size())
	dependents := make(map[string][]string, ts.Size())

	for _, id := range ts.order {
		r := ts.reviewers[id]
		indegree[id] = len(r.DependsOn)
		for _, dep := range r.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	remaining := make(map[string]bool, ts.Size())
	for _, id := range ts.order {
		remaining[id] = true
	}

	var phases []Phase

	for len(remaining) > 0 {
		// Все узлы с нулевым indegree образуют очередную фазу.
		var ready []string
		for _, id := range ts.order {
			if remaining[id] && indegree[id] == 0 {
				ready = append(ready, id)
			}
		}

		tasks := make([]*domain.ReviewerDef, 0, len(ready))
		for _, id := range ready {
			tasks = append(tasks, ts.reviewers[id])
		}
		sortPhaseTasks(tasks)

		phases = append(phases, Phase{Index: len(phases), Tasks: tasks})

		for _, id := range ready {
			delete(remaining, id)
			for _, dep := range dependents[id] {
				indegree[dep]--
			}
		}
	}

	return phases
}

// sortPhaseTasks упорядочивает задачи фазы: по группе, затем по ID.
func sortPhaseTasks(tasks []*domain.ReviewerDef) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Group != tasks[j].Group {
			return tasks[i].Group < tasks[j].Group
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// PhaseGroups разбивает задачи фазы по группам, сохраняя
// детерминированный порядок групп (по имени).
func PhaseGroups(phase Phase, ts *TaskSet) []GroupTasks {
	byGroup := make(map[string][]*domain.ReviewerDef)
	var names []string

	for _, task := range phase.Tasks {
		if _, seen := byGroup[task.Group]; !seen {
			names = append(names, task.Group)
		}
		byGroup[task.Group] = append(byGroup[task.Group], task)
	}
	sort.Strings(names)

	out := make([]GroupTasks, 0, len(names))
	for _, name := range names {
		out = append(out, GroupTasks{
			Group: ts.Group(name),
			Tasks: byGroup[name],
		})
	}
	return out
}

// GroupTasks — задачи одной группы внутри фазы.
type GroupTasks struct {
	Group *domain.GroupDef
	Tasks []*domain.ReviewerDef
}
