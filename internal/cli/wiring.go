package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"gigfinder/internal/config"
	"gigfinder/internal/generator"
	"gigfinder/internal/repository/filestore"
	"gigfinder/internal/repository/postgresql"
	"gigfinder/internal/repository/rediskv"
	"gigfinder/internal/repository/sqlite"
	"gigfinder/internal/secrets"
	"gigfinder/internal/service"
	"gigfinder/internal/workflow"
)

// jobSource serves both gigs and demand maps.
type jobSource interface {
	workflow.JobGenerator
	service.DemandGenerator
}

// openHistory returns the configured backend and a func releasing its connections.
func openHistory(ctx context.Context, cfg config.Config) (service.HistoryRepository, func(), error) {
	noop := func() {}

	switch cfg.History.Backend {
	case config.BackendFile:
		repo := filestore.NewHistoryRepository(cfg.HistoryFile())
		log.Printf("[history] backend=file path=%s", repo.Path())
		return repo, noop, nil

	case config.BackendRedis:
		rdb, err := rediskv.NewClient(ctx, cfg.History.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("redis: %w", err)
		}
		log.Printf("[history] backend=redis url=%s", config.RedactDSN(cfg.History.RedisURL))
		return rediskv.NewHistoryRepository(rdb, service.HistoryKey), func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		pool, err := postgresql.NewPool(ctx, cfg.History.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("pg: %w", err)
		}
		repo := postgresql.NewHistoryRepository(pool, service.HistoryKey)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("pg schema: %w", err)
		}
		log.Printf("[history] backend=postgres dsn=%s", config.RedactDSN(cfg.History.PostgresDSN))
		return repo, pool.Close, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, noop, fmt.Errorf("sqlite: %w", err)
		}
		log.Printf("[history] backend=sqlite path=%s", cfg.SQLitePath())
		return sqlite.NewHistoryRepository(db, service.HistoryKey), func() { _ = db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown history backend %q", config.ErrInvalid, cfg.History.Backend)
}

// newGenerator picks Gemini when a key is available (or required) and the
// offline catalog otherwise.
func newGenerator(cfg config.Config, store secrets.Store) (jobSource, string, error) {
	if cfg.Generator.Kind == config.GeneratorLocal {
		return newLocal(cfg), config.GeneratorLocal, nil
	}

	key, err := secrets.APIKey(store)
	if err != nil {
		if cfg.Generator.Kind == config.GeneratorGemini {
			return nil, "", err
		}
		log.Printf("[generator] no api key, using local catalog")
		return newLocal(cfg), config.GeneratorLocal, nil
	}

	g := generator.NewGemini(generator.GeminiConfig{
		APIKey:     key,
		Model:      cfg.Generator.Model,
		BaseURL:    cfg.Generator.BaseURL,
		RatePerSec: cfg.Generator.RatePerSec,
		Burst:      cfg.Generator.Burst,
	}, nil)
	return g, config.GeneratorGemini, nil
}

func newLocal(cfg config.Config) *generator.Local {
	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return generator.NewLocal(seed)
}
