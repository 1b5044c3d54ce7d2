package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Graphs
	mux.Handle("GET /api/v1/graphs", chain(http.HandlerFunc(h.ListGraphs)))
	mux.Handle("POST /api/v1/graphs", chain(http.HandlerFunc(h.CreateGraph)))
	mux.Handle("GET /api/v1/graphs/{id}", chain(http.HandlerFunc(h.GetGraph)))
	mux.Handle("PUT /api/v1/graphs/{id}", chain(http.HandlerFunc(h.UpdateGraph)))
	mux.Handle("DELETE /api/v1/graphs/{id}", chain(http.HandlerFunc(h.DeleteGraph)))

	// Graph Versions
	mux.Handle("GET /api/v1/graphs/{id}/versions", chain(http.HandlerFunc(h.ListGraphVersions)))
	mux.Handle("POST /api/v1/graphs/{id}/versions", chain(http.HandlerFunc(h.CreateGraphVersion)))
	mux.Handle("GET /api/v1/graphs/{id}/versions/{version}", chain(http.HandlerFunc(h.GetGraphVersion)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("POST /api/v1/graphs/{id}/runs", chain(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("GET /api/v1/runs/{id}/report", chain(http.HandlerFunc(h.GetRunReport)))
	mux.Handle("GET /api/v1/runs/{id}/findings", chain(http.HandlerFunc(h.ListRunFindings)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/graphs/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))
}
