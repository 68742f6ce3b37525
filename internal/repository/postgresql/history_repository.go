package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and verifies a pgxpool connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// HistoryRepository keeps the history document as one row of kv_store.
type HistoryRepository struct {
	pool *pgxpool.Pool
	key  string
}

func NewHistoryRepository(pool *pgxpool.Pool, key string) *HistoryRepository {
	return &HistoryRepository{pool: pool, key: key}
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS kv_store (
  key        TEXT PRIMARY KEY,
  value      JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure kv_store: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Load(ctx context.Context) ([]byte, error) {
	const q = `SELECT value FROM kv_store WHERE key = $1;`

	var value []byte
	if err := r.pool.QueryRow(ctx, q, r.key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

func (r *HistoryRepository) Save(ctx context.Context, data []byte) error {
	const q = `
INSERT INTO kv_store (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
`
	_, err := r.pool.Exec(ctx, q, r.key, data)
	return err
}
