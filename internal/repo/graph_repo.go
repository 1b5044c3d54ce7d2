package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Argus/internal/domain"
)

// GraphRepo — репозиторий для работы с graphs и graph_versions.
type GraphRepo struct {
	pool *pgxpool.Pool
}

// NewGraphRepo создаёт новый GraphRepo.
func NewGraphRepo(pool *pgxpool.Pool) *GraphRepo {
	return &GraphRepo{pool: pool}
}

// --- Graph CRUD ---

// Create создаёт новый graph.
func (r *GraphRepo) Create(ctx context.Context, graph *domain.Graph) error {
	query := `
		INSERT INTO graphs (id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		graph.ID,
		graph.Name,
		graph.IsActive,
		graph.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert graph: %w", err)
	}
	return nil
}

// GetByID возвращает graph по ID.
func (r *GraphRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Graph, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM graphs
		WHERE id = $1
	`
	var graph domain.Graph
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&graph.ID,
		&graph.Name,
		&graph.IsActive,
		&graph.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get graph by id: %w", err)
	}
	return &graph, nil
}

// GetByName возвращает graph по имени.
func (r *GraphRepo) GetByName(ctx context.Context, name string) (*domain.Graph, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM graphs
		WHERE name = $1
	`
	var graph domain.Graph
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&graph.ID,
		&graph.Name,
		&graph.IsActive,
		&graph.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get graph by name: %w", err)
	}
	return &graph, nil
}

// List возвращает список всех graphs.
func (r *GraphRepo) List(ctx context.Context) ([]domain.Graph, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM graphs
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var graphs []domain.Graph
	for rows.Next() {
		var graph domain.Graph
		if err := rows.Scan(
			&graph.ID,
			&graph.Name,
			&graph.IsActive,
			&graph.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, graph)
	}
	return graphs, rows.Err()
}

// Update обновляет graph.
func (r *GraphRepo) Update(ctx context.Context, graph *domain.Graph) error {
	query := `
		UPDATE graphs
		SET name = $2, is_active = $3
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, graph.ID, graph.Name, graph.IsActive)
	if err != nil {
		return fmt.Errorf("update graph: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет graph (каскадно удалит versions, runs, schedules).
func (r *GraphRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM graphs WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- GraphVersion CRUD ---

// CreateVersion создаёт новую версию graph.
// Версия автоматически инкрементируется.
func (r *GraphRepo) CreateVersion(ctx context.Context, graphID uuid.UUID, spec domain.ReviewGraph) (*domain.GraphVersion, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}

	// Получаем следующий номер версии
	var nextVersion int
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM graph_versions
		WHERE graph_id = $1
	`, graphID).Scan(&nextVersion)
	if err != nil {
		return nil, fmt.Errorf("get next version: %w", err)
	}

	var version domain.GraphVersion
	err = r.pool.QueryRow(ctx, `
		INSERT INTO graph_versions (graph_id, version, spec, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING graph_id, version, spec, created_at
	`, graphID, nextVersion, specJSON).Scan(
		&version.GraphID,
		&version.Version,
		&specJSON,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert graph version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &version.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &version, nil
}

// GetVersion возвращает конкретную версию graph.
func (r *GraphRepo) GetVersion(ctx context.Context, graphID uuid.UUID, version int) (*domain.GraphVersion, error) {
	query := `
		SELECT graph_id, version, spec, created_at
		FROM graph_versions
		WHERE graph_id = $1 AND version = $2
	`
	var gv domain.GraphVersion
	var specJSON []byte
	err := r.pool.QueryRow(ctx, query, graphID, version).Scan(
		&gv.GraphID,
		&gv.Version,
		&specJSON,
		&gv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get graph version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &gv.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &gv, nil
}

// GetLatestVersion возвращает последнюю версию graph.
func (r *GraphRepo) GetLatestVersion(ctx context.Context, graphID uuid.UUID) (*domain.GraphVersion, error) {
	query := `
		SELECT graph_id, version, spec, created_at
		FROM graph_versions
		WHERE graph_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var gv domain.GraphVersion
	var specJSON []byte
	err := r.pool.QueryRow(ctx, query, graphID).Scan(
		&gv.GraphID,
		&gv.Version,
		&specJSON,
		&gv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest graph version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &gv.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &gv, nil
}

// ListVersions возвращает все версии graph.
func (r *GraphRepo) ListVersions(ctx context.Context, graphID uuid.UUID) ([]domain.GraphVersion, error) {
	query := `
		SELECT graph_id, version, spec, created_at
		FROM graph_versions
		WHERE graph_id = $1
		ORDER BY version DESC
	`
	rows, err := r.pool.Query(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("list graph versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.GraphVersion
	for rows.Next() {
		var gv domain.GraphVersion
		var specJSON []byte
		if err := rows.Scan(
			&gv.GraphID,
			&gv.Version,
			&specJSON,
			&gv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan graph version: %w", err)
		}

		if err := json.Unmarshal(specJSON, &gv.Spec); err != nil {
			return nil, fmt.Errorf("unmarshal spec: %w", err)
		}

		versions = append(versions, gv)
	}
	return versions, rows.Err()
}
