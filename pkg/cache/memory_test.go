package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astockdata/pkg/core"
)

func sampleBars(t *testing.T) []core.DailyBar {
	t.Helper()

	day, err := core.ParseDate("2024-03-01")
	require.NoError(t, err)

	return []core.DailyBar{
		{Symbol: "600000.SH", Date: day, Open: 10.0, Close: 10.2, High: 10.3, Low: 9.9, Volume: 1000},
		{Symbol: "600000.SH", Date: day.AddDate(0, 0, 3), Open: 10.2, Close: 10.1, High: 10.4, Low: 10.0, Volume: 900},
	}
}

func TestMemoryCacheBasic(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheConfig{MaxSize: 10, DefaultTTL: time.Minute})
	defer mc.Close()

	ctx := context.Background()
	bars := sampleBars(t)
	key := Key("600000.SH", bars[0].Date, bars[1].Date)

	_, err := mc.Get(ctx, key)
	assert.True(t, IsMiss(err))

	require.NoError(t, mc.Set(ctx, key, bars, 0))

	got, err := mc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, bars, got)

	// 返回的是副本，修改不会影响缓存
	got[0].Close = 99
	again, err := mc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 10.2, again[0].Close)

	require.NoError(t, mc.Delete(ctx, key))
	_, err = mc.Get(ctx, key)
	assert.True(t, IsMiss(err))
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheConfig{MaxSize: 10, DefaultTTL: time.Minute})
	defer mc.Close()

	ctx := context.Background()
	bars := sampleBars(t)

	require.NoError(t, mc.Set(ctx, "short", bars, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := mc.Get(ctx, "short")
	assert.True(t, IsMiss(err))
}

func TestMemoryCacheEviction(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheConfig{MaxSize: 2, DefaultTTL: time.Minute})
	defer mc.Close()

	ctx := context.Background()
	bars := sampleBars(t)

	require.NoError(t, mc.Set(ctx, "a", bars, 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", bars, 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", bars, 0))

	// 最早写入的条目被淘汰
	_, err := mc.Get(ctx, "a")
	assert.True(t, IsMiss(err))

	_, err = mc.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCacheStats(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheConfig{MaxSize: 10, DefaultTTL: time.Minute})
	defer mc.Close()

	ctx := context.Background()
	bars := sampleBars(t)

	require.NoError(t, mc.Set(ctx, "k", bars, 0))
	_, _ = mc.Get(ctx, "k")
	_, _ = mc.Get(ctx, "missing")

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Size)
	assert.Equal(t, int64(1), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestMemoryCacheConcurrentGet(t *testing.T) {
	mc := NewMemoryCache(MemoryCacheConfig{MaxSize: 10, DefaultTTL: time.Minute})
	defer mc.Close()

	ctx := context.Background()
	bars := sampleBars(t)
	require.NoError(t, mc.Set(ctx, "k", bars, 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := mc.Get(ctx, "k")
				assert.NoError(t, err)
				assert.Len(t, got, 2)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(400), mc.Stats().HitCount)
}

func TestKey(t *testing.T) {
	start, _ := core.ParseDate("2024-03-01")
	end, _ := core.ParseDate("2024-04-30")

	assert.Equal(t, "daily:600000.SH:2024-03-01:2024-04-30", Key("600000.SH", start, end))
}
