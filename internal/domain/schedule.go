package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schedule — расписание периодических ревью.
//
// Поддерживает два режима: cron-выражение или фиксированный интервал.
// Ровно одно из полей CronExpr / IntervalSec должно быть заполнено.
type Schedule struct {
	// ID — уникальный идентификатор schedule.
	ID uuid.UUID `json:"id"`

	// GraphID — граф, который запускается по расписанию.
	GraphID uuid.UUID `json:"graph_id"`

	// Target — цель ревью.
	Target string `json:"target"`

	// Depth — пресет глубины для создаваемых runs.
	Depth string `json:"depth"`

	// CronExpr — cron-выражение (5 полей), пусто для interval-режима.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — интервал в секундах, 0 для cron-режима.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — IANA timezone для cron-вычислений. Пусто = UTC.
	Timezone string `json:"timezone,omitempty"`

	// Enabled — выключенные schedules не создают runs.
	Enabled bool `json:"enabled"`

	// NextDueAt — следующее время запуска.
	NextDueAt time.Time `json:"next_due_at"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// IsCron возвращает true для cron-режима.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true для interval-режима.
func (s *Schedule) IsInterval() bool {
	return s.IntervalSec > 0
}

// IdempotencyKey возвращает ключ идемпотентности для run'а,
// создаваемого по этому расписанию в момент due.
func (s *Schedule) IdempotencyKey(due time.Time) string {
	return fmt.Sprintf("%s_%d", s.ID, due.Unix())
}
