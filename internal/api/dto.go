package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Argus/internal/domain"
)

// Graph DTOs

// CreateGraphRequest — запрос на создание graph.
// Spec опционален: если задан, первая версия создаётся сразу.
type CreateGraphRequest struct {
	Name string              `json:"name"`
	Spec *domain.ReviewGraph `json:"spec,omitempty"`
}

// UpdateGraphRequest — запрос на обновление graph.
type UpdateGraphRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// GraphResponse — ответ с graph.
type GraphResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// GraphFromDomain конвертирует domain.Graph в GraphResponse.
func GraphFromDomain(g domain.Graph) GraphResponse {
	return GraphResponse{
		ID:        g.ID,
		Name:      g.Name,
		IsActive:  g.IsActive,
		CreatedAt: g.CreatedAt,
	}
}

// GraphVersion DTOs

// CreateGraphVersionRequest — запрос на создание версии graph.
type CreateGraphVersionRequest struct {
	Spec domain.ReviewGraph `json:"spec"`
}

// GraphVersionResponse — ответ с версией graph.
type GraphVersionResponse struct {
	GraphID   uuid.UUID          `json:"graph_id"`
	Version   int                `json:"version"`
	Spec      domain.ReviewGraph `json:"spec"`
	CreatedAt time.Time          `json:"created_at"`
}

// GraphVersionFromDomain конвертирует domain.GraphVersion в GraphVersionResponse.
func GraphVersionFromDomain(v domain.GraphVersion) GraphVersionResponse {
	return GraphVersionResponse{
		GraphID:   v.GraphID,
		Version:   v.Version,
		Spec:      v.Spec,
		CreatedAt: v.CreatedAt,
	}
}

// Run DTOs

// CreateRunRequest — запрос на создание review run.
type CreateRunRequest struct {
	Target         string `json:"target"`
	Depth          string `json:"depth,omitempty"`
	Version        *int   `json:"version,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID             uuid.UUID      `json:"id"`
	GraphID        uuid.UUID      `json:"graph_id"`
	GraphVersion   int            `json:"graph_version"`
	Target         string         `json:"target"`
	Depth          string         `json:"depth,omitempty"`
	Status         string         `json:"status"`
	Report         *domain.Report `json:"report,omitempty"`
	Error          string         `json:"error,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	FinishedAt     *time.Time     `json:"finished_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
// Отчёт отдаётся отдельным эндпоинтом, в списках он опускается.
func RunFromDomain(r domain.Run, withReport bool) RunResponse {
	resp := RunResponse{
		ID:             r.ID,
		GraphID:        r.GraphID,
		GraphVersion:   r.GraphVersion,
		Target:         r.Target,
		Depth:          r.Depth,
		Status:         string(r.Status),
		Error:          r.Error,
		IdempotencyKey: r.IdempotencyKey,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		CreatedAt:      r.CreatedAt,
	}
	if withReport {
		resp.Report = r.Report
	}
	return resp
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Target      string `json:"target"`
	Depth       string `json:"depth,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID          uuid.UUID `json:"id"`
	GraphID     uuid.UUID `json:"graph_id"`
	Target      string    `json:"target"`
	Depth       string    `json:"depth,omitempty"`
	CronExpr    string    `json:"cron_expr,omitempty"`
	IntervalSec int       `json:"interval_sec,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Enabled     bool      `json:"enabled"`
	NextDueAt   time.Time `json:"next_due_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:          s.ID,
		GraphID:     s.GraphID,
		Target:      s.Target,
		Depth:       s.Depth,
		CronExpr:    s.CronExpr,
		IntervalSec: s.IntervalSec,
		Timezone:    s.Timezone,
		Enabled:     s.Enabled,
		NextDueAt:   s.NextDueAt,
		CreatedAt:   s.CreatedAt,
	}
}
