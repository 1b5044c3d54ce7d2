package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
	"github.com/shaiso/Argus/internal/repo"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?graph_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{}

	if graphIDStr := r.URL.Query().Get("graph_id"); graphIDStr != "" {
		graphID, err := uuid.Parse(graphIDStr)
		if err != nil {
			BadRequest(w, "invalid graph_id")
			return
		}
		filter.GraphID = &graphID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.RunStatus(status)
	}

	filter.Limit = queryInt(r, "limit", 50)
	filter.Offset = queryInt(r, "offset", 0)

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run, false)
	}

	List(w, result, len(result))
}

// CreateRun создаёт новый review run для graph.
// POST /api/v1/graphs/{id}/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	graphID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Target == "" {
		BadRequest(w, "target is required")
		return
	}

	switch req.Depth {
	case "", engine.DepthQuick, engine.DepthStandard, engine.DepthDeep:
	default:
		BadRequest(w, "unknown depth: "+req.Depth)
		return
	}

	// Проверяем, что graph существует и активен
	graph, err := h.graphRepo.GetByID(r.Context(), graphID)
	if HandleRepoError(w, h.logger, err, "graph not found") {
		return
	}
	if !graph.IsActive {
		InvalidState(w, "graph is not active")
		return
	}

	// Определяем версию
	var version int
	if req.Version != nil {
		version = *req.Version
		_, err := h.graphRepo.GetVersion(r.Context(), graphID, version)
		if HandleRepoError(w, h.logger, err, "graph version not found") {
			return
		}
	} else {
		latestVersion, err := h.graphRepo.GetLatestVersion(r.Context(), graphID)
		if HandleRepoError(w, h.logger, err, "graph has no versions") {
			return
		}
		version = latestVersion.Version
	}

	// Проверяем idempotency key
	if req.IdempotencyKey != "" {
		existingRun, err := h.runRepo.GetByIdempotencyKey(r.Context(), graphID, req.IdempotencyKey)
		if err == nil && existingRun != nil {
			Success(w, RunFromDomain(*existingRun, false))
			return
		}
	}

	run := &domain.Run{
		ID:             uuid.New(),
		GraphID:        graph.ID,
		GraphVersion:   version,
		Target:         req.Target,
		Depth:          req.Depth,
		Status:         domain.RunPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := h.runRepo.Create(r.Context(), run); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикуем событие в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishReviewPending(r.Context(), run.ID); err != nil {
			h.logger.Warn("failed to publish review.pending", "run_id", run.ID, "error", err)
		}
	}

	Created(w, RunFromDomain(*run, false))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run, false))
}

// GetRunReport возвращает отчёт завершённого run.
// GET /api/v1/runs/{id}/report
func (h *Handler) GetRunReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	if run.Report == nil {
		InvalidState(w, "run has no report yet")
		return
	}

	Success(w, run.Report)
}

// ListRunFindings возвращает findings run с фильтром по severity.
// GET /api/v1/runs/{id}/findings?min_severity=...
func (h *Handler) ListRunFindings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что run существует
	_, err = h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	var findings []domain.Finding
	if minStr := r.URL.Query().Get("min_severity"); minStr != "" {
		min, err := domain.ParseSeverity(minStr)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		findings, err = h.findingRepo.ListBySeverity(r.Context(), id, min)
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
	} else {
		findings, err = h.findingRepo.ListByRun(r.Context(), id)
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
	}

	List(w, findings, len(findings))
}

// queryInt парсит числовой query-параметр с дефолтным значением.
func queryInt(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
