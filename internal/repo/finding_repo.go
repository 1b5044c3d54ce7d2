package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Argus/internal/domain"
)

// FindingRepo — репозиторий для работы с findings.
//
// Findings дублируют содержимое report JSONB отдельными строками,
// чтобы их можно было фильтровать по severity и target без разбора отчёта.
type FindingRepo struct {
	pool *pgxpool.Pool
}

// NewFindingRepo создаёт новый FindingRepo.
func NewFindingRepo(pool *pgxpool.Pool) *FindingRepo {
	return &FindingRepo{pool: pool}
}

// CreateBatch вставляет findings завершённого run одним batch'ем.
func (r *FindingRepo) CreateBatch(ctx context.Context, runID uuid.UUID, findings []domain.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO findings (run_id, source_task_id, severity, category,
		                      file, line, message, suggestion, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, f := range findings {
		batch.Queue(query,
			runID,
			f.SourceTaskID,
			f.Severity,
			f.Category,
			f.File,
			f.Line,
			f.Message,
			nullString(f.Suggestion),
			f.Score(),
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range findings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}
	return nil
}

// ListByRun возвращает findings одного run в порядке убывания score.
func (r *FindingRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.Finding, error) {
	query := `
		SELECT source_task_id, severity, category, file, line, message, suggestion
		FROM findings
		WHERE run_id = $1
		ORDER BY score DESC, file ASC, line ASC, category ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	return scanFindings(rows)
}

// ListBySeverity возвращает findings run'а с указанной severity и выше.
func (r *FindingRepo) ListBySeverity(ctx context.Context, runID uuid.UUID, min domain.Severity) ([]domain.Finding, error) {
	query := `
		SELECT source_task_id, severity, category, file, line, message, suggestion
		FROM findings
		WHERE run_id = $1 AND score >= $2
		ORDER BY score DESC, file ASC, line ASC, category ASC
	`
	// Вес severity — нижняя граница score при multiplier = 1.
	rows, err := r.pool.Query(ctx, query, runID, min.Weight())
	if err != nil {
		return nil, fmt.Errorf("list findings by severity: %w", err)
	}
	defer rows.Close()

	return scanFindings(rows)
}

// DeleteByRun удаляет findings run'а (перед повторной записью).
func (r *FindingRepo) DeleteByRun(ctx context.Context, runID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM findings WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("delete findings: %w", err)
	}
	return nil
}

func scanFindings(rows pgx.Rows) ([]domain.Finding, error) {
	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var suggestion *string
		if err := rows.Scan(
			&f.SourceTaskID,
			&f.Severity,
			&f.Category,
			&f.File,
			&f.Line,
			&f.Message,
			&suggestion,
		); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if suggestion != nil {
			f.Suggestion = *suggestion
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
