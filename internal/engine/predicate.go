package engine

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Predicate — чистая булева проверка target'а.
//
// Предикаты предзарегистрированы по имени и вычисляются ровно один раз
// за run, до планирования. Никакой интерпретации строк во время
// выполнения — только именованные функции.
type Predicate func(target string) (bool, error)

// PredicateSet — реестр именованных предикатов.
type PredicateSet struct {
	predicates map[string]Predicate
}

// NewPredicateSet создаёт реестр со стандартными предикатами.
func NewPredicateSet() *PredicateSet {
	p := &PredicateSet{predicates: make(map[string]Predicate)}

	p.Register("always", func(string) (bool, error) { return true, nil })
	p.Register("has-go-files", hasFilesWithExt(".go"))
	p.Register("has-sql-files", hasFilesWithExt(".sql"))
	p.Register("has-web-assets", hasFilesWithExt(".html", ".css", ".js", ".ts", ".tsx"))
	p.Register("has-dockerfile", hasFileNamed("Dockerfile"))
	p.Register("has-yaml-files", hasFilesWithExt(".yaml", ".yml"))

	return p
}

// Register регистрирует предикат под именем.
// Существующий предикат с тем же именем перезаписывается.
func (p *PredicateSet) Register(name string, fn Predicate) {
	p.predicates[name] = fn
}

// Lookup возвращает предикат по имени.
func (p *PredicateSet) Lookup(name string) (Predicate, bool) {
	fn, ok := p.predicates[name]
	return fn, ok
}

// Has проверяет, зарегистрирован ли предикат.
func (p *PredicateSet) Has(name string) bool {
	_, ok := p.predicates[name]
	return ok
}

// hasFilesWithExt возвращает предикат "в target есть файлы с расширением".
func hasFilesWithExt(exts ...string) Predicate {
	return func(target string) (bool, error) {
		return walkMatch(target, func(name string) bool {
			ext := strings.ToLower(filepath.Ext(name))
			for _, e := range exts {
				if ext == e {
					return true
				}
			}
			return false
		})
	}
}

// hasFileNamed возвращает предикат "в target есть файл с именем".
func hasFileNamed(name string) Predicate {
	return func(target string) (bool, error) {
		return walkMatch(target, func(n string) bool {
			return n == name
		})
	}
}

// errFound прерывает WalkDir при первом совпадении.
var errFound = filepath.SkipAll

// walkMatch обходит target и возвращает true при первом файле,
// удовлетворяющем match. Скрытые директории (вида ".git") пропускаются.
func walkMatch(target string, match func(name string) bool) (bool, error) {
	found := false

	err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != target {
				return filepath.SkipDir
			}
			return nil
		}
		if match(d.Name()) {
			found = true
			return errFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return found, nil
}
