package repository

import (
	"context"
	"fmt"

	"cv-builder/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

const DefaultHistoryLimit = 20

// ExportsRepo keeps the export history in Postgres.
type ExportsRepo struct {
	pool *pgxpool.Pool
}

func NewExportsRepo(pool *pgxpool.Pool) *ExportsRepo {
	return &ExportsRepo{pool: pool}
}

func (r *ExportsRepo) Record(ctx context.Context, e *domain.ExportRecord) error {
	if r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO cv_exports (id, user_id, template, format, file_name, width_px, height_px, overflow, size_bytes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.Template, e.Format, e.FileName, e.WidthPx, e.HeightPx, e.Overflow, e.SizeBytes, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

func (r *ExportsRepo) List(ctx context.Context, userID string, limit int) ([]domain.ExportRecord, error) {
	if r.pool == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, template, format, file_name, width_px, height_px, overflow, size_bytes, created_at
		FROM cv_exports WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportRecord
	for rows.Next() {
		var (
			e  domain.ExportRecord
			id string
		)
		if err := rows.Scan(&id, &e.UserID, &e.Template, &e.Format, &e.FileName, &e.WidthPx, &e.HeightPx, &e.Overflow, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("export %q: %w", id, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
