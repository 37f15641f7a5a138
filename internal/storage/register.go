package storage

import (
	"context"

	"github.com/vovakirdan/taprunner/internal/registry"
)

// DefaultSQLitePath is where the sqlite backend keeps its database.
const DefaultSQLitePath = "~/.taprunner/taprunner.db"

func init() {
	registry.Register(registry.BackendInfo{
		Name:        "memory",
		Description: "In-process store, nothing survives exit",
	}, func(context.Context, string) (registry.Store, error) {
		return NewMemoryStore(), nil
	})

	registry.Register(registry.BackendInfo{
		Name:        "sqlite",
		Description: "SQLite database with best score and run history",
		DefaultDSN:  DefaultSQLitePath,
	}, func(_ context.Context, dsn string) (registry.Store, error) {
		return OpenSQLite(dsn)
	})

	registry.Register(registry.BackendInfo{
		Name:        "gdata",
		Description: "Per-user save data directory",
		DefaultDSN:  "taprunner",
	}, func(_ context.Context, dsn string) (registry.Store, error) {
		return OpenGdata(dsn)
	})

	registry.Register(registry.BackendInfo{
		Name:        "redis",
		Description: "Redis server shared between hosts",
		DefaultDSN:  "localhost:6379",
	}, func(ctx context.Context, dsn string) (registry.Store, error) {
		return OpenRedis(ctx, dsn)
	})
}
