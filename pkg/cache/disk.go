package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
)

// diskEnvelope 磁盘缓存文件的内容格式
type diskEnvelope struct {
	Key       string          `json:"key"`
	CreatedAt time.Time       `json:"created_at"`
	ExpireAt  time.Time       `json:"expire_at"`
	Bars      []core.DailyBar `json:"bars"`
}

// DiskCache 基于JSON文件的磁盘缓存，进程重启后数据仍然可用
type DiskCache struct {
	dir        string
	defaultTTL time.Duration

	mu        sync.Mutex
	hitCount  int64
	missCount int64
}

// NewDiskCache 创建磁盘缓存，目录不存在时自动创建
func NewDiskCache(dir string, defaultTTL time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.Wrap(apperror.ErrConfigInvalid, "无法创建缓存目录", err).
			WithContext("dir", dir)
	}

	return &DiskCache{
		dir:        dir,
		defaultTTL: defaultTTL,
	}, nil
}

// Get 读取缓存文件，过期条目会被删除并按未命中处理
func (dc *DiskCache) Get(ctx context.Context, key string) ([]core.DailyBar, error) {
	path := filepath.Join(dc.dir, fileKey(key))

	data, err := os.ReadFile(path)
	if err != nil {
		atomic.AddInt64(&dc.missCount, 1)
		return nil, ErrMiss
	}

	var envelope diskEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		// 损坏的文件直接删除
		_ = os.Remove(path)
		atomic.AddInt64(&dc.missCount, 1)
		return nil, ErrMiss
	}

	if envelope.ExpireAt.Before(time.Now()) {
		_ = os.Remove(path)
		atomic.AddInt64(&dc.missCount, 1)
		return nil, ErrMiss
	}

	atomic.AddInt64(&dc.hitCount, 1)
	return envelope.Bars, nil
}

// Set 写入缓存文件，先写临时文件再重命名避免读到半个文件
func (dc *DiskCache) Set(ctx context.Context, key string, bars []core.DailyBar, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = dc.defaultTTL
	}

	now := time.Now()
	envelope := diskEnvelope{
		Key:       key,
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
		Bars:      bars,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	path := filepath.Join(dc.dir, fileKey(key))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete 删除缓存文件
func (dc *DiskCache) Delete(ctx context.Context, key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	err := os.Remove(filepath.Join(dc.dir, fileKey(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear 删除目录下所有缓存文件
func (dc *DiskCache) Clear(ctx context.Context) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(dc.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	atomic.StoreInt64(&dc.hitCount, 0)
	atomic.StoreInt64(&dc.missCount, 0)
	return nil
}

// Stats 获取缓存统计信息，条目数按目录中的文件数计算
func (dc *DiskCache) Stats() Stats {
	matches, _ := filepath.Glob(filepath.Join(dc.dir, "*.json"))

	hitCount := atomic.LoadInt64(&dc.hitCount)
	missCount := atomic.LoadInt64(&dc.missCount)

	var hitRate float64
	if total := hitCount + missCount; total > 0 {
		hitRate = float64(hitCount) / float64(total)
	}

	return Stats{
		Size:      int64(len(matches)),
		HitCount:  hitCount,
		MissCount: missCount,
		HitRate:   hitRate,
		TTL:       dc.defaultTTL,
	}
}

// Close 磁盘缓存没有需要释放的资源
func (dc *DiskCache) Close() error {
	return nil
}

var _ Cache = (*DiskCache)(nil)
