package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"astockdata/pkg/core"
)

// Cache 定义了日线数据缓存的接口。
// 所有缓存实现（MemoryCache, DiskCache, RedisCache）都遵循此接口。
type Cache interface {
	// Get 从缓存中获取一段日线数据，未命中时返回 ErrMiss。
	Get(ctx context.Context, key string) ([]core.DailyBar, error)
	// Set 向缓存中写入一段日线数据，可以指定TTL（生存时间）。
	Set(ctx context.Context, key string, bars []core.DailyBar, ttl time.Duration) error
	// Delete 从缓存中删除一个条目。
	Delete(ctx context.Context, key string) error
	// Clear 清空所有缓存条目。
	Clear(ctx context.Context) error
	// Stats 获取缓存的统计信息。
	Stats() Stats
	// Close 释放缓存持有的资源。
	Close() error
}

// Stats 包含了缓存的详细统计信息。
type Stats struct {
	Size        int64         `json:"size"`         // 当前缓存中的条目数
	MaxSize     int64         `json:"max_size"`     // 缓存最大容量
	HitCount    int64         `json:"hit_count"`    // 命中次数
	MissCount   int64         `json:"miss_count"`   // 未命中次数
	HitRate     float64       `json:"hit_rate"`     // 命中率
	TTL         time.Duration `json:"ttl"`          // 默认的生存时间
	LastCleanup time.Time     `json:"last_cleanup"` // 最后一次清理过期条目的时间
}

// Key 构造日线数据的缓存键，代码须为标准化格式
func Key(symbol string, start, end time.Time) string {
	return fmt.Sprintf("daily:%s:%s:%s",
		symbol, core.FormatDate(start), core.FormatDate(end))
}

// keyReplacer 把缓存键转换为可用作文件名的形式
var keyReplacer = strings.NewReplacer(":", "_", "/", "_")

// fileKey 返回键对应的文件名
func fileKey(key string) string {
	return keyReplacer.Replace(key) + ".json"
}
