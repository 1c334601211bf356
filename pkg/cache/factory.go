package cache

import (
	"time"

	"astockdata/pkg/apperror"
	"astockdata/pkg/config"
)

// FromConfig 根据配置创建对应后端的缓存实例
// 缓存被禁用时返回 nil，调用方需要处理 nil 缓存。
func FromConfig(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryCache(MemoryCacheConfig{
			MaxSize:         int64(cfg.MaxSize),
			DefaultTTL:      cfg.TTL,
			CleanupInterval: 5 * time.Minute,
		}), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.TTL)
	case "redis":
		return NewRedisCache(RedisCacheConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			DefaultTTL: cfg.TTL,
		})
	default:
		return nil, apperror.New(apperror.ErrConfigInvalid, "未知的缓存后端").
			WithContext("backend", cfg.Backend)
	}
}
