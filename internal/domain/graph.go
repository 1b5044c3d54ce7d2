package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupMode — режим выполнения группы reviewer'ов.
type GroupMode string

const (
	// GroupModeParallel — участники группы выполняются конкурентно.
	GroupModeParallel GroupMode = "parallel"

	// GroupModeSequential — участники группы выполняются строго по очереди.
	GroupModeSequential GroupMode = "sequential"
)

// RetryClass — класс политики повторных попыток reviewer'а.
type RetryClass string

const (
	// RetryCritical — ошибка reviewer'а блокирует зависимые задачи.
	// Выполняется с retry (до MaxCriticalRetries повторов).
	RetryCritical RetryClass = "critical"

	// RetryOptional — ошибка логируется, зависимые задачи продолжают
	// выполнение с флагом UpstreamDegraded. Без retry.
	RetryOptional RetryClass = "optional"
)

// MaxCriticalRetries — количество повторов для critical reviewer'ов
// (не считая первой попытки).
const MaxCriticalRetries = 2

// ReviewGraph — декларативное описание графа ревью.
//
// Граф — это "рецепт" ревью: набор независимых reviewer'ов с зависимостями,
// группами выполнения и пресетами глубины. Граф неизменяем после загрузки.
type ReviewGraph struct {
	// Name — уникальное имя графа (например, "web-review", "go-service").
	Name string `json:"name" yaml:"name"`

	// Description — описание назначения графа.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Groups — группы выполнения, на которые ссылаются reviewers.
	Groups []GroupDef `json:"groups" yaml:"groups"`

	// Reviewers — задачи анализа.
	Reviewers []ReviewerDef `json:"reviewers" yaml:"reviewers"`

	// Depths — пресеты глубины: имя пресета → список ID reviewer'ов.
	// Ключи: "quick", "standard", "deep". Отсутствующий "deep" означает
	// весь граф.
	Depths map[string][]string `json:"depths,omitempty" yaml:"depths,omitempty"`
}

// GroupDef — именованная группа выполнения.
type GroupDef struct {
	// Name — уникальное имя группы.
	Name string `json:"name" yaml:"name"`

	// Mode — режим выполнения: parallel или sequential.
	Mode GroupMode `json:"mode" yaml:"mode"`

	// TimeoutSec — таймаут на группу целиком, в секундах.
	// Должен быть не меньше максимального таймаута участника (parallel)
	// или суммы таймаутов участников (sequential).
	TimeoutSec int `json:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout возвращает таймаут группы как Duration.
func (g *GroupDef) Timeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// ReviewerDef — определение одной задачи анализа.
//
// Reviewer — это единица независимой работы с объявленным таймаутом
// и зависимостями. Сам анализ — непрозрачный внешний вызов (Analyzer),
// возвращающий список findings или ошибку.
type ReviewerDef struct {
	// ID — уникальный идентификатор reviewer'а в рамках графа.
	// Используется в depends_on и в отчёте.
	ID string `json:"id" yaml:"id"`

	// DisplayName — человекочитаемое имя (для отчётов и логов).
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// TimeoutSec — максимальное время выполнения, в секундах.
	TimeoutSec int `json:"timeout_sec" yaml:"timeout_sec"`

	// DependsOn — ID reviewer'ов, которые должны завершиться успешно
	// до запуска этого.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Group — имя группы выполнения.
	Group string `json:"group" yaml:"group"`

	// Predicate — имя предзарегистрированного предиката.
	// Если предикат возвращает false для текущего target, reviewer
	// помечается skipped без потребления executor'а.
	Predicate string `json:"predicate,omitempty" yaml:"predicate,omitempty"`

	// Retry — класс политики повторных попыток: critical или optional.
	Retry RetryClass `json:"retry" yaml:"retry"`

	// Analyzer — стратегия анализа. Непрозрачна для планировщика
	// и агрегатора, передаётся во внешний вызов как есть.
	Analyzer AnalyzerDef `json:"analyzer" yaml:"analyzer"`
}

// AnalyzerDef — непрозрачная конфигурация внешнего вызова анализа.
type AnalyzerDef struct {
	// Strategy — тип analyzer'а: "command", "http", "static".
	Strategy string `json:"strategy" yaml:"strategy"`

	// Config — конфигурация, специфичная для стратегии.
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// MaxExecutionTime возвращает таймаут reviewer'а как Duration.
func (r *ReviewerDef) MaxExecutionTime() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// Label возвращает DisplayName, либо ID если имя не задано.
func (r *ReviewerDef) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.ID
}

// IsCritical возвращает true для critical-класса retry-политики.
func (r *ReviewerDef) IsCritical() bool {
	return r.Retry == RetryCritical
}

// GroupByName возвращает определение группы по имени.
func (g *ReviewGraph) GroupByName(name string) *GroupDef {
	for i := range g.Groups {
		if g.Groups[i].Name == name {
			return &g.Groups[i]
		}
	}
	return nil
}

// ReviewerByID возвращает определение reviewer'а по ID.
func (g *ReviewGraph) ReviewerByID(id string) *ReviewerDef {
	for i := range g.Reviewers {
		if g.Reviewers[i].ID == id {
			return &g.Reviewers[i]
		}
	}
	return nil
}

// Graph — persisted-запись графа в каталоге.
//
// Само определение хранится версионированно в GraphVersion:
// каждое обновление через API создаёт новую версию, старые runs
// продолжают ссылаться на свою.
type Graph struct {
	// ID — уникальный идентификатор графа.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя графа.
	Name string `json:"name"`

	// IsActive — неактивные графы нельзя запускать.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// GraphVersion — одна версия определения графа.
type GraphVersion struct {
	// GraphID — ссылка на граф.
	GraphID uuid.UUID `json:"graph_id"`

	// Version — номер версии (с единицы).
	Version int `json:"version"`

	// Spec — определение графа этой версии.
	Spec ReviewGraph `json:"spec"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}
