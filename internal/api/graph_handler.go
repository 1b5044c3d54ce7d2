package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
)

// ListGraphs возвращает список всех graphs.
// GET /api/v1/graphs
func (h *Handler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	graphs, err := h.graphRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]GraphResponse, len(graphs))
	for i, g := range graphs {
		result[i] = GraphFromDomain(g)
	}

	List(w, result, len(result))
}

// CreateGraph создаёт новый graph.
// POST /api/v1/graphs
func (h *Handler) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var req CreateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	if req.Spec != nil {
		if err := validateSpec(req.Spec); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	graph := &domain.Graph{
		ID:       uuid.New(),
		Name:     req.Name,
		IsActive: req.Spec != nil,
	}

	if err := h.graphRepo.Create(r.Context(), graph); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	// Первая версия — сразу, если spec передан
	if req.Spec != nil {
		if _, err := h.graphRepo.CreateVersion(r.Context(), graph.ID, *req.Spec); err != nil {
			InternalError(w, h.logger, err)
			return
		}
	}

	Created(w, GraphFromDomain(*graph))
}

// GetGraph возвращает graph по ID.
// GET /api/v1/graphs/{id}
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	graph, err := h.graphRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "graph not found") {
		return
	}

	Success(w, GraphFromDomain(*graph))
}

// UpdateGraph обновляет graph.
// PUT /api/v1/graphs/{id}
func (h *Handler) UpdateGraph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	var req UpdateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	graph, err := h.graphRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "graph not found") {
		return
	}

	if req.Name != nil {
		graph.Name = *req.Name
	}
	if req.IsActive != nil {
		graph.IsActive = *req.IsActive
	}

	if err := h.graphRepo.Update(r.Context(), graph); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, GraphFromDomain(*graph))
}

// DeleteGraph удаляет graph.
// DELETE /api/v1/graphs/{id}
func (h *Handler) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	if err := h.graphRepo.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "graph not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// ListGraphVersions возвращает список версий graph.
// GET /api/v1/graphs/{id}/versions
func (h *Handler) ListGraphVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	// Проверяем, что graph существует
	_, err = h.graphRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "graph not found") {
		return
	}

	versions, err := h.graphRepo.ListVersions(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]GraphVersionResponse, len(versions))
	for i, v := range versions {
		result[i] = GraphVersionFromDomain(v)
	}

	List(w, result, len(result))
}

// CreateGraphVersion создаёт новую версию graph.
// POST /api/v1/graphs/{id}/versions
func (h *Handler) CreateGraphVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	var req CreateGraphVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Невалидный граф не должен попасть в каталог
	if err := validateSpec(&req.Spec); err != nil {
		BadRequest(w, err.Error())
		return
	}

	// Проверяем, что graph существует
	_, err = h.graphRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "graph not found") {
		return
	}

	version, err := h.graphRepo.CreateVersion(r.Context(), id, req.Spec)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, GraphVersionFromDomain(*version))
}

// GetGraphVersion возвращает конкретную версию graph.
// GET /api/v1/graphs/{id}/versions/{version}
func (h *Handler) GetGraphVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid graph id")
		return
	}

	versionNum, err := strconv.Atoi(r.PathValue("version"))
	if err != nil {
		BadRequest(w, "invalid version number")
		return
	}

	version, err := h.graphRepo.GetVersion(r.Context(), id, versionNum)
	if HandleRepoError(w, h.logger, err, "graph version not found") {
		return
	}

	Success(w, GraphVersionFromDomain(*version))
}

// validateSpec прогоняет spec через полную валидацию engine.
func validateSpec(spec *domain.ReviewGraph) error {
	_, err := engine.Load(spec, "", engine.NewPredicateSet())
	var cfgErr *engine.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr
	}
	return err
}
