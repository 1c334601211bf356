package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"astockdata/pkg/core"
)

// memoryEntry 内存缓存中的一个条目
type memoryEntry struct {
	bars       []core.DailyBar
	expireTime time.Time
	createTime time.Time
	hitCount   int64
}

// MemoryCache 线程安全的内存缓存实现
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	maxSize    int64
	hitCount   int64
	missCount  int64
	defaultTTL time.Duration

	// 清理相关
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	lastCleanup   time.Time
}

// MemoryCacheConfig 内存缓存配置
type MemoryCacheConfig struct {
	MaxSize         int64         // 最大条目数量
	DefaultTTL      time.Duration // 默认TTL
	CleanupInterval time.Duration // 清理间隔，为0时不启动清理协程
}

// NewMemoryCache 创建新的内存缓存
func NewMemoryCache(config MemoryCacheConfig) *MemoryCache {
	c := &MemoryCache{
		entries:     make(map[string]*memoryEntry),
		maxSize:     config.MaxSize,
		defaultTTL:  config.DefaultTTL,
		stopCleanup: make(chan struct{}),
		lastCleanup: time.Now(),
	}

	if config.CleanupInterval > 0 {
		c.cleanupTicker = time.NewTicker(config.CleanupInterval)
		go c.startCleanup()
	}

	return c
}

// Get 获取缓存的日线数据
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]core.DailyBar, error) {
	mc.mu.RLock()
	entry, exists := mc.entries[key]
	mc.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&mc.missCount, 1)
		return nil, ErrMiss
	}

	if entry.expireTime.Before(time.Now()) {
		mc.mu.Lock()
		delete(mc.entries, key)
		mc.mu.Unlock()
		atomic.AddInt64(&mc.missCount, 1)
		return nil, ErrMiss
	}

	atomic.AddInt64(&entry.hitCount, 1)
	atomic.AddInt64(&mc.hitCount, 1)

	// 返回副本，调用方修改不影响缓存内容
	bars := make([]core.DailyBar, len(entry.bars))
	copy(bars, entry.bars)
	return bars, nil
}

// Set 写入日线数据
func (mc *MemoryCache) Set(ctx context.Context, key string, bars []core.DailyBar, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}

	stored := make([]core.DailyBar, len(bars))
	copy(stored, bars)

	now := time.Now()
	entry := &memoryEntry{
		bars:       stored,
		expireTime: now.Add(ttl),
		createTime: now,
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if int64(len(mc.entries)) >= mc.maxSize {
		mc.evictOldest()
	}

	mc.entries[key] = entry
	return nil
}

// Delete 删除缓存条目
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	delete(mc.entries, key)
	return nil
}

// Clear 清空缓存
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries = make(map[string]*memoryEntry)
	atomic.StoreInt64(&mc.hitCount, 0)
	atomic.StoreInt64(&mc.missCount, 0)
	return nil
}

// Stats 获取缓存统计信息
func (mc *MemoryCache) Stats() Stats {
	mc.mu.RLock()
	size := int64(len(mc.entries))
	lastCleanup := mc.lastCleanup
	mc.mu.RUnlock()

	hitCount := atomic.LoadInt64(&mc.hitCount)
	missCount := atomic.LoadInt64(&mc.missCount)

	var hitRate float64
	if total := hitCount + missCount; total > 0 {
		hitRate = float64(hitCount) / float64(total)
	}

	return Stats{
		Size:        size,
		MaxSize:     mc.maxSize,
		HitCount:    hitCount,
		MissCount:   missCount,
		HitRate:     hitRate,
		TTL:         mc.defaultTTL,
		LastCleanup: lastCleanup,
	}
}

// Close 关闭缓存并停止清理协程
func (mc *MemoryCache) Close() error {
	if mc.cleanupTicker != nil {
		mc.cleanupTicker.Stop()
	}
	close(mc.stopCleanup)
	return nil
}

func (mc *MemoryCache) startCleanup() {
	for {
		select {
		case <-mc.cleanupTicker.C:
			mc.cleanup()
		case <-mc.stopCleanup:
			return
		}
	}
}

// cleanup 清理过期条目
func (mc *MemoryCache) cleanup() {
	now := time.Now()
	expiredKeys := make([]string, 0)

	mc.mu.RLock()
	for key, entry := range mc.entries {
		if entry.expireTime.Before(now) {
			expiredKeys = append(expiredKeys, key)
		}
	}
	mc.mu.RUnlock()

	if len(expiredKeys) > 0 {
		mc.mu.Lock()
		for _, key := range expiredKeys {
			delete(mc.entries, key)
		}
		mc.lastCleanup = now
		mc.mu.Unlock()
	}
}

// evictOldest 淘汰创建时间最早的条目
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range mc.entries {
		if oldestKey == "" || entry.createTime.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createTime
		}
	}

	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

var _ Cache = (*MemoryCache)(nil)
