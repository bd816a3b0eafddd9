package backend

import (
	"fmt"

	"dompet/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedDir:      appConfig.SeedDir,
	}, nil
}

// CacheFromAppConfig converts the application config to cache config
func CacheFromAppConfig(appConfig *config.Config) (CacheConfig, error) {
	if appConfig == nil {
		return CacheConfig{}, fmt.Errorf("app config is nil")
	}

	cacheType := CacheType(appConfig.CacheBackend)
	if !cacheType.IsValid() {
		return CacheConfig{}, fmt.Errorf("invalid cache backend in config: %s", appConfig.CacheBackend)
	}

	return CacheConfig{
		Type:          cacheType,
		TTL:           appConfig.CacheTTL,
		Size:          appConfig.CacheSize,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}

// Validate validates the cache configuration
func (c CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid cache type: %s", c.Type)
	}

	switch c.Type {
	case MemoryCache:
		if c.Size <= 0 {
			return fmt.Errorf("cache size must be positive for memory cache")
		}
		if c.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
	case RedisCache:
		if c.RedisAddr == "" {
			return fmt.Errorf("Redis address is required for redis cache")
		}
		if c.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
