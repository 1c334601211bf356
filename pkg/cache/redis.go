package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"astockdata/pkg/core"
	"astockdata/pkg/logger"
)

// Redis键前缀，Clear只清理带此前缀的键
const redisKeyPrefix = "astock:"

// RedisCache 基于Redis的共享缓存，多个进程可以复用同一份数据
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration

	hitCount  int64
	missCount int64
}

// RedisCacheConfig Redis缓存配置
type RedisCacheConfig struct {
	Addr       string        // Redis 地址
	Password   string        // Redis 密码
	DB         int           // 数据库编号
	DefaultTTL time.Duration // 默认TTL
}

// NewRedisCache 创建Redis缓存并验证连接
func NewRedisCache(config RedisCacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.WithComponent("RedisCache").Infof("已连接Redis: %s db=%d", config.Addr, config.DB)

	return &RedisCache{
		client:     client,
		defaultTTL: config.DefaultTTL,
	}, nil
}

// Get 从Redis读取日线数据
func (rc *RedisCache) Get(ctx context.Context, key string) ([]core.DailyBar, error) {
	data, err := rc.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		atomic.AddInt64(&rc.missCount, 1)
		return nil, ErrMiss
	}
	if err != nil {
		atomic.AddInt64(&rc.missCount, 1)
		return nil, err
	}

	var bars []core.DailyBar
	if err := json.Unmarshal(data, &bars); err != nil {
		atomic.AddInt64(&rc.missCount, 1)
		return nil, ErrMiss
	}

	atomic.AddInt64(&rc.hitCount, 1)
	return bars, nil
}

// Set 写入日线数据，TTL由Redis负责过期
func (rc *RedisCache) Set(ctx context.Context, key string, bars []core.DailyBar, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}

	data, err := json.Marshal(bars)
	if err != nil {
		return err
	}

	return rc.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}

// Delete 删除缓存条目
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Clear 扫描并删除所有带前缀的键
func (rc *RedisCache) Clear(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	atomic.StoreInt64(&rc.hitCount, 0)
	atomic.StoreInt64(&rc.missCount, 0)
	return nil
}

// Stats 获取缓存统计信息，条目数按前缀键数量计算
func (rc *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var size int64
	iter := rc.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		size++
	}

	hitCount := atomic.LoadInt64(&rc.hitCount)
	missCount := atomic.LoadInt64(&rc.missCount)

	var hitRate float64
	if total := hitCount + missCount; total > 0 {
		hitRate = float64(hitCount) / float64(total)
	}

	return Stats{
		Size:      size,
		HitCount:  hitCount,
		MissCount: missCount,
		HitRate:   hitRate,
		TTL:       rc.defaultTTL,
	}
}

// Close 关闭Redis连接
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

var _ Cache = (*RedisCache)(nil)
