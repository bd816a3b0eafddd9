package backend

import (
	"context"
	"time"

	"dompet/internal/cache"
	"dompet/internal/records"
	"dompet/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the record store and its lifecycle hooks.
type BackendResult struct {
	Store records.Store
	// Ready reports whether the store can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// CacheResult holds the dashboard cache. Cache is nil when caching is off.
type CacheResult struct {
	Cache   cache.Cache[services.DashboardView]
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a record store based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateCache creates the dashboard cache based on the provided config
	CreateCache(ctx context.Context, config CacheConfig) (*CacheResult, error)
}

// Config holds configuration for record store creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; empty uses the built-in category seeds
	SeedDir string
}

// CacheConfig holds configuration for dashboard cache creation
type CacheConfig struct {
	Type CacheType
	TTL  time.Duration

	// Memory specific
	Size int

	// Redis specific
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// BackendType represents the type of record store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CacheType represents the type of dashboard cache
type CacheType string

const (
	NoCache     CacheType = "none"
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
)

func (ct CacheType) String() string {
	return string(ct)
}

func (ct CacheType) IsValid() bool {
	switch ct {
	case NoCache, MemoryCache, RedisCache:
		return true
	default:
		return false
	}
}
