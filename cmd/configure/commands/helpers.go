package commands

import (
	"context"
	"fmt"

	"github.com/lifeos/lifeos-api/internal/config"
	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/store"
	"go.uber.org/zap"
)

// openGoalStore connects to the configured backend and loads the goal
// collection. The caller must Close the returned store.
func openGoalStore(ctx context.Context) (kv.Store, *store.GoalStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	var kvStore kv.Store
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		kvStore, err = kv.NewPostgresStore(cfg.DatabaseURL)
	default:
		kvStore, err = kv.NewRedisStore(cfg.RedisURL)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	goals, err := store.NewGoalStore(ctx, kvStore, nil, store.NopNotifier{}, zap.NewNop())
	if err != nil {
		kvStore.Close()
		return nil, nil, fmt.Errorf("failed to load goals: %w", err)
	}

	return kvStore, goals, nil
}
