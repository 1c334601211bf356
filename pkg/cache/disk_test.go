package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer dc.Close()

	ctx := context.Background()
	bars := sampleBars(t)
	key := Key("600000.SH", bars[0].Date, bars[1].Date)

	_, err = dc.Get(ctx, key)
	assert.True(t, IsMiss(err))

	require.NoError(t, dc.Set(ctx, key, bars, 0))

	got, err := dc.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bars[0].Close, got[0].Close)
	assert.Equal(t, bars[1].Volume, got[1].Volume)
}

func TestDiskCacheExpiry(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer dc.Close()

	ctx := context.Background()
	require.NoError(t, dc.Set(ctx, "short", sampleBars(t), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err = dc.Get(ctx, "short")
	assert.True(t, IsMiss(err))

	// 过期文件已被删除
	assert.Equal(t, int64(0), dc.Stats().Size)
}

func TestDiskCacheClear(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer dc.Close()

	ctx := context.Background()
	bars := sampleBars(t)

	require.NoError(t, dc.Set(ctx, "a", bars, 0))
	require.NoError(t, dc.Set(ctx, "b", bars, 0))
	assert.Equal(t, int64(2), dc.Stats().Size)

	require.NoError(t, dc.Clear(ctx))
	assert.Equal(t, int64(0), dc.Stats().Size)

	_, err = dc.Get(ctx, "a")
	assert.True(t, IsMiss(err))
}
