package backend

import (
	"context"
	"fmt"

	"dompet/internal/cache"
	"dompet/internal/log"
	"dompet/internal/records/memory"
	"dompet/internal/services"
	"dompet/internal/storage"
)

// dashboardPrefix namespaces dashboard entries in a shared Redis.
const dashboardPrefix = "dompet:"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var store *memory.Store
	if config.SeedDir != "" {
		store = memory.NewFromFiles(config.SeedDir)
	} else {
		store = memory.New(nil)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "seed_dir", config.SeedDir)

	return &BackendResult{
		Store:   store,
		Ready:   func(context.Context) error { return nil },
		Cleanup: store.Close,
	}, nil
}

// CreateCache implements Factory.CreateCache. In-process caches are
// registered with a cleanup manager that the returned Cleanup stops.
func (f *DefaultFactory) CreateCache(ctx context.Context, config CacheConfig) (*CacheResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case NoCache:
		f.logger.InfoContext(ctx, "Dashboard cache disabled")
		return &CacheResult{Cleanup: func() error { return nil }}, nil

	case MemoryCache:
		lru := cache.NewLRUCache[services.DashboardView](config.Size, config.TTL)
		manager := cache.NewManager()
		manager.Register(lru)
		manager.StartCleanup(config.TTL)

		f.logger.InfoContext(ctx, "Initialized memory cache", "size", config.Size, "ttl", config.TTL)

		return &CacheResult{
			Cache: lru,
			Cleanup: func() error {
				manager.Stop()
				return nil
			},
		}, nil

	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		f.logger.InfoContext(ctx, "Initialized Redis cache", "addr", config.RedisAddr, "ttl", config.TTL)

		return &CacheResult{
			Cache:   cache.NewRedisCache[services.DashboardView](client, dashboardPrefix, config.TTL),
			Cleanup: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}
