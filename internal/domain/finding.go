package domain

import "errors"

// Severity — серьёзность finding'а.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityWeights — канонические веса серьёзности.
// Порядки величин разнесены так, чтобы никакой множитель категории
// не поднял low выше medium и т.д.
var severityWeights = map[Severity]int{
	SeverityCritical: 1000,
	SeverityHigh:     100,
	SeverityMedium:   10,
	SeverityLow:      1,
}

// Weight возвращает вес серьёзности. Неизвестная серьёзность — 0.
func (s Severity) Weight() int {
	return severityWeights[s]
}

// IsValid проверяет, что серьёзность известна.
func (s Severity) IsValid() bool {
	_, ok := severityWeights[s]
	return ok
}

// ParseSeverity парсит строку в Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", errors.New("unknown severity: " + s)
	}
	return sev, nil
}

// Severities возвращает все серьёзности в порядке убывания веса.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// Category — категория finding'а.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryAccessibility   Category = "accessibility"
	CategoryPerformance     Category = "performance"
	CategoryFunctionality   Category = "functionality"
	CategoryMaintainability Category = "maintainability"
	CategoryStyle           Category = "style"
)

// categoryMultipliers — канонические множители категорий.
var categoryMultipliers = map[Category]int{
	CategorySecurity:        10,
	CategoryAccessibility:   8,
	CategoryPerformance:     6,
	CategoryFunctionality:   5,
	CategoryMaintainability: 3,
	CategoryStyle:           1,
}

// Multiplier возвращает множитель категории.
// Неизвестная категория не отбрасывает finding — множитель 1.
func (c Category) Multiplier() int {
	if m, ok := categoryMultipliers[c]; ok {
		return m
	}
	return 1
}

// Finding — одна найденная проблема, произведённая reviewer'ом.
//
// После передачи агрегатору finding принадлежит только ему —
// никакой другой компонент не мутирует finding после создания.
type Finding struct {
	// SourceTaskID — ID reviewer'а, который породил finding.
	SourceTaskID string `json:"source_task_id"`

	// Severity — серьёзность: critical, high, medium, low.
	Severity Severity `json:"severity"`

	// Category — категория: security, performance, style и т.д.
	Category Category `json:"category"`

	// File — файл, к которому относится проблема.
	File string `json:"file"`

	// Line — номер строки (0 = файл целиком).
	Line int `json:"line,omitempty"`

	// Message — краткое описание проблемы.
	Message string `json:"message"`

	// Suggestion — рекомендация по исправлению.
	Suggestion string `json:"suggestion,omitempty"`
}

// Score возвращает приоритетный балл finding'а:
// вес серьёзности × множитель категории. Не хранится — всегда вычисляется.
func (f *Finding) Score() int {
	return f.Severity.Weight() * f.Category.Multiplier()
}

// FindingKey — составной ключ дедупликации (file, line, category).
type FindingKey struct {
	File     string
	Line     int
	Category Category
}

// Key возвращает ключ дедупликации finding'а.
func (f *Finding) Key() FindingKey {
	return FindingKey{File: f.File, Line: f.Line, Category: f.Category}
}

// Ошибки валидации finding'ов.
var (
	// ErrMissingFile — у finding'а не заполнен файл.
	ErrMissingFile = errors.New("finding has no file")

	// ErrMissingMessage — у finding'а нет описания.
	ErrMissingMessage = errors.New("finding has no message")

	// ErrInvalidSeverity — неизвестная серьёзность.
	ErrInvalidSeverity = errors.New("finding has invalid severity")

	// ErrMissingCategory — не заполнена категория.
	ErrMissingCategory = errors.New("finding has no category")
)

// Validate проверяет обязательные поля finding'а.
// Невалидный finding отбрасывается агрегатором и учитывается в метриках,
// но никогда не прерывает агрегацию.
func (f *Finding) Validate() error {
	if f.File == "" {
		return ErrMissingFile
	}
	if f.Message == "" {
		return ErrMissingMessage
	}
	if !f.Severity.IsValid() {
		return ErrInvalidSeverity
	}
	if f.Category == "" {
		return ErrMissingCategory
	}
	return nil
}
