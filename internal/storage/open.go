package storage

import (
	"context"
	"fmt"

	"rtrove/internal/config"
	"rtrove/internal/observability"
)

// Open builds the backend selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (KV, error) {
	switch cfg.StorageBackend {
	case config.BackendBadger, "":
		bc := DefaultBadgerConfig(cfg.BadgerPath)
		if cfg.BadgerInMemory {
			bc = InMemoryBadgerConfig()
		}
		bc.Logger = observability.GlobalLogger.With("component", "badger")
		kv, err := OpenBadger(bc)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.BackendRedis:
		kv, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.BackendSQL:
		kv, err := OpenSQL(cfg.SQLDialect, cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
