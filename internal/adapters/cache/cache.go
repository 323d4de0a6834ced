package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/flashcards/internal/platform/config"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

// Store is a cache adapter with its maintenance hooks.
type Store interface {
	ports.Cache
	ports.HealthChecker

	Prune(ctx context.Context) (int, error)
	Close() error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)

// New opens the cache selected by cfg.Driver.
func New(cfg *config.CacheConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// RunPruner drops expired entries every interval until ctx is done.
func RunPruner(ctx context.Context, store Store, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx)
			if err != nil {
				logger.Warn("cache prune failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.Debug("cache pruned", slog.Int("removed", n))
			}
		}
	}
}
