package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cmd is the subset of *redis.Client the repository needs.
type Cmd interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewClient creates and verifies a Redis client connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// HistoryRepository stores the history document as a plain string value with no TTL.
type HistoryRepository struct {
	rdb Cmd
	key string
}

func NewHistoryRepository(rdb Cmd, key string) *HistoryRepository {
	return &HistoryRepository{rdb: rdb, key: key}
}

func (r *HistoryRepository) Load(ctx context.Context) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *HistoryRepository) Save(ctx context.Context, data []byte) error {
	return r.rdb.Set(ctx, r.key, data, 0).Err()
}
