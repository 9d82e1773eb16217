package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cv-builder/internal/model"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresStore keeps one JSONB row per user in the cvs table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) Load(ctx context.Context, userID string) (*model.Resume, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM cvs WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cv: %w", err)
	}
	return decode(raw)
}

func (s *PostgresStore) Save(ctx context.Context, userID string, doc *model.Resume) error {
	b, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO cvs (user_id, data, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		userID, b, s.now())
	if err != nil {
		return fmt.Errorf("upsert cv: %w", err)
	}
	return nil
}
