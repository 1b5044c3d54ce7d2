package aggregate

import (
	"sort"

	"github.com/shaiso/Argus/internal/domain"
)

// Result — результат агрегации.
type Result struct {
	// Findings — дедуплицированные findings, отсортированные по score.
	Findings []domain.Finding

	// Malformed — количество отброшенных невалидных findings.
	Malformed int
}

// Aggregate дедуплицирует, скорит и сортирует findings.
//
// Правила:
//   - ключ дедупликации — (file, line, category); при коллизии побеждает
//     больший вес серьёзности, при равных — первый добавленный
//   - сортировка по score убыв.; tie-break по (file, line) возр.,
//     затем по категории — для полного детерминизма
//   - невалидный finding (нет обязательного поля) отбрасывается
//     и учитывается в Malformed; агрегация никогда не прерывается
//     из-за одной плохой записи
func Aggregate(findings []domain.Finding) Result {
	index := make(map[domain.FindingKey]int, len(findings))
	kept := make([]domain.Finding, 0, len(findings))
	malformed := 0

	for _, f := range findings {
		if err := f.Validate(); err != nil {
			malformed++
			continue
		}

		key := f.Key()
		pos, seen := index[key]
		if !seen {
			index[key] = len(kept)
			kept = append(kept, f)
			continue
		}

		// Дубликат: замещаем только при строго большем весе —
		// при равной серьёзности остаётся первый добавленный.
		if f.Severity.Weight() > kept[pos].Severity.Weight() {
			kept[pos] = f
		}
	}

	sortFindings(kept)

	return Result{Findings: kept, Malformed: malformed}
}

// sortFindings упорядочивает findings детерминированно:
// score убыв., затем file, line, category возр.
func sortFindings(findings []domain.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := &findings[i], &findings[j]

		if sa, sb := a.Score(), b.Score(); sa != sb {
			return sa > sb
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Category < b.Category
	})
}
