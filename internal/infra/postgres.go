package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates a pgx connection pool from the given config.
func NewPostgresPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

var (
	sharedPoolMu sync.Mutex
	sharedPool   *pgxpool.Pool
)

// SharedPool returns the process-wide pool, connecting on first use.
// A failed connect is not cached: the next call tries again. Once
// connected, later calls return the same pool regardless of their
// arguments. The pool lives until the process exits.
func SharedPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	return sharedPoolWith(ctx, cfg, NewPostgresPool)
}

func sharedPoolWith(ctx context.Context, cfg *Config, connect func(context.Context, *Config) (*pgxpool.Pool, error)) (*pgxpool.Pool, error) {
	sharedPoolMu.Lock()
	defer sharedPoolMu.Unlock()

	if sharedPool != nil {
		return sharedPool, nil
	}
	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sharedPool = pool
	return pool, nil
}

// HealthCheck pings the database and returns an error if unreachable.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return pool.Ping(ctx)
}
