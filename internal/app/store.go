package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pokerledger/tracker/internal/infra"
	"github.com/pokerledger/tracker/internal/repository"
)

// OpenStore builds the session store selected by STORE_DRIVER. The returned
// func releases what the store holds; the shared Postgres pool is left open
// for the life of the process.
func OpenStore(ctx context.Context, cfg *infra.Config, logger *slog.Logger) (repository.SessionStore, func(), error) {
	switch cfg.StoreDriver {
	case infra.DriverSQLite:
		db, err := infra.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewGormSessionStore(db)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite session store", "path", cfg.SQLitePath)
		return store, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil

	case infra.DriverPostgres:
		pool, err := infra.SharedPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("using postgres session store")
		return repository.NewPgSessionStore(pool, repository.NewOutboxRepository()), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
