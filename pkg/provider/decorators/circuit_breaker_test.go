package decorators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astockdata/pkg/core"
)

// fakeProvider 可控的历史数据提供商
type fakeProvider struct {
	fail  bool
	calls int
}

func (f *fakeProvider) Name() string                { return "fake" }
func (f *fakeProvider) IsHealthy() bool             { return true }
func (f *fakeProvider) GetRateLimit() time.Duration { return 0 }

func (f *fakeProvider) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return []core.DailyBar{{Symbol: symbol, Close: 10}}, nil
}

func TestCircuitBreakerPassThrough(t *testing.T) {
	base := &fakeProvider{}
	cb := NewCircuitBreakerProvider(base, nil)

	bars, err := cb.FetchDailyBars(context.Background(), "600000.SH", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, "fake", cb.Name())
	assert.True(t, cb.IsHealthy())

	stats := cb.Stats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.SuccessfulRequests)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	base := &fakeProvider{fail: true}
	cb := NewCircuitBreakerProvider(base, &CircuitBreakerConfig{
		Name:        "test",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: 3,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cb.FetchDailyBars(ctx, "600000.SH", time.Now(), time.Now())
		assert.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.False(t, cb.IsHealthy())

	// 熔断打开后请求不再到达底层提供商
	callsBefore := base.calls
	_, err := cb.FetchDailyBars(ctx, "600000.SH", time.Now(), time.Now())
	assert.Error(t, err)
	assert.Equal(t, callsBefore, base.calls)
}
