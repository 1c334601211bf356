package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astockdata/pkg/apperror"
	"astockdata/pkg/config"
	"astockdata/pkg/core"
)

// fakeHistorical 可控的历史数据提供商
type fakeHistorical struct {
	name  string
	bars  []core.DailyBar
	err   error
	calls int
}

func (f *fakeHistorical) Name() string                { return f.name }
func (f *fakeHistorical) IsHealthy() bool             { return f.err == nil }
func (f *fakeHistorical) GetRateLimit() time.Duration { return 0 }

func (f *fakeHistorical) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

// fakeRealtime 可控的实时行情提供商
type fakeRealtime struct {
	quotes []core.Quote
}

func (f *fakeRealtime) Name() string                { return "fake-realtime" }
func (f *fakeRealtime) IsHealthy() bool             { return true }
func (f *fakeRealtime) GetRateLimit() time.Duration { return 0 }
func (f *fakeRealtime) IsSymbolSupported(sym string) bool {
	return sym != "830799.BJ"
}

func (f *fakeRealtime) FetchQuotes(ctx context.Context, symbols []string) ([]core.Quote, error) {
	return f.quotes, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Provider.TushareToken = "test-token"
	cfg.Provider.MaxRetries = 1
	cfg.Provider.RetryDelay = time.Millisecond
	cfg.Provider.RateLimit = 0
	return cfg
}

func testBars(symbol string) []core.DailyBar {
	day, _ := core.ParseDate("2024-03-01")
	return []core.DailyBar{
		{Symbol: symbol, Date: day, Open: 10.0, Close: 10.2, High: 10.3, Low: 9.9, Volume: 1000},
	}
}

func newTestSelector(t *testing.T, primary, secondary *fakeHistorical) *Selector {
	t.Helper()

	s, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.primary = primary
	s.secondary = secondary
	return s
}

func dateRange(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start, err := core.ParseDate("2024-03-01")
	require.NoError(t, err)
	end, err := core.ParseDate("2024-03-01")
	require.NoError(t, err)
	return start, end
}

func TestGetStockDataInvalidCode(t *testing.T) {
	s := newTestSelector(t,
		&fakeHistorical{name: "tushare"},
		&fakeHistorical{name: "eastmoney"})
	start, end := dateRange(t)

	_, err := s.GetStockData(context.Background(), "not-a-code!", start, end)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrInvalidCodeFormat, apperror.CodeOf(err))
}

func TestGetStockDataRejectsOtherMarkets(t *testing.T) {
	s := newTestSelector(t,
		&fakeHistorical{name: "tushare"},
		&fakeHistorical{name: "eastmoney"})
	start, end := dateRange(t)

	for _, code := range []string{"AAPL", "0700.HK"} {
		_, err := s.GetStockData(context.Background(), code, start, end)
		require.Error(t, err, code)
		assert.Equal(t, apperror.ErrInvalidCodeFormat, apperror.CodeOf(err))
	}
}

func TestGetStockDataPrimary(t *testing.T) {
	primary := &fakeHistorical{name: "tushare", bars: testBars("600000.SH")}
	secondary := &fakeHistorical{name: "eastmoney"}
	s := newTestSelector(t, primary, secondary)
	start, end := dateRange(t)

	bars, err := s.GetStockData(context.Background(), "600000", start, end)
	require.NoError(t, err)
	assert.Equal(t, testBars("600000.SH"), bars)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestGetStockDataCacheHit(t *testing.T) {
	primary := &fakeHistorical{name: "tushare", bars: testBars("600000.SH")}
	s := newTestSelector(t, primary, &fakeHistorical{name: "eastmoney"})
	start, end := dateRange(t)

	_, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)

	// 第二次请求命中缓存，不再访问提供商
	_, err = s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
}

func TestGetStockDataFallback(t *testing.T) {
	primary := &fakeHistorical{name: "tushare", err: errors.New("server exploded")}
	secondary := &fakeHistorical{name: "eastmoney", bars: testBars("600000.SH")}
	s := newTestSelector(t, primary, secondary)
	start, end := dateRange(t)

	bars, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	assert.Equal(t, testBars("600000.SH"), bars)
	assert.GreaterOrEqual(t, primary.calls, 1)
	assert.Equal(t, 1, secondary.calls)
}

func TestGetStockDataEmptyResultFallsBack(t *testing.T) {
	primary := &fakeHistorical{name: "tushare"} // 正常响应但没有数据
	secondary := &fakeHistorical{name: "eastmoney", bars: testBars("600000.SH")}
	s := newTestSelector(t, primary, secondary)
	start, end := dateRange(t)

	bars, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	assert.Equal(t, testBars("600000.SH"), bars)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestGetStockDataAllEmpty(t *testing.T) {
	s := newTestSelector(t,
		&fakeHistorical{name: "tushare"},
		&fakeHistorical{name: "eastmoney"})
	start, end := dateRange(t)

	bars, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestGetStockDataPrimaryFailsSecondaryEmpty(t *testing.T) {
	primary := &fakeHistorical{name: "tushare", err: errors.New("down")}
	secondary := &fakeHistorical{name: "eastmoney"} // 正常响应但没有数据
	s := newTestSelector(t, primary, secondary)
	start, end := dateRange(t)

	bars, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.Equal(t, 1, secondary.calls)
}

func TestGetStockDataAllFail(t *testing.T) {
	primary := &fakeHistorical{name: "tushare", err: errors.New("down")}
	secondary := &fakeHistorical{name: "eastmoney", err: errors.New("also down")}
	s := newTestSelector(t, primary, secondary)
	start, end := dateRange(t)

	_, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrAllProvidersFailed, apperror.CodeOf(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"tushare", "eastmoney"}, appErr.Context["attempted"])
}

func TestGetStockDataMethodEastmoney(t *testing.T) {
	primary := &fakeHistorical{name: "tushare", bars: testBars("600000.SH")}
	secondary := &fakeHistorical{name: "eastmoney", bars: testBars("600000.SH")}
	s := newTestSelector(t, primary, secondary)
	s.SetMethod(MethodEastmoney)
	start, end := dateRange(t)

	_, err := s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestGetStockDataFatalErrorSkipsRetry(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.MaxRetries = 3

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	primary := &fakeHistorical{name: "tushare", err: errors.New("dial tcp: connection refused")}
	secondary := &fakeHistorical{name: "eastmoney", bars: testBars("600000.SH")}
	s.primary = primary
	s.secondary = secondary
	start, end := dateRange(t)

	_, err = s.GetStockData(context.Background(), "600000.SH", start, end)
	require.NoError(t, err)
	// 致命错误不重试，直接换提供商
	assert.Equal(t, 1, primary.calls)
}

func TestGetRealtimeQuotes(t *testing.T) {
	s := newTestSelector(t,
		&fakeHistorical{name: "tushare"},
		&fakeHistorical{name: "eastmoney"})
	s.realtime = &fakeRealtime{quotes: []core.Quote{{Symbol: "600000.SH", Price: 7.1}}}

	quotes, err := s.GetRealtimeQuotes(context.Background(), []string{"600000", "830799.BJ"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "600000.SH", quotes[0].Symbol)
}

func TestGetRealtimeQuotesInvalidCode(t *testing.T) {
	s := newTestSelector(t,
		&fakeHistorical{name: "tushare"},
		&fakeHistorical{name: "eastmoney"})
	s.realtime = &fakeRealtime{}

	_, err := s.GetRealtimeQuotes(context.Background(), []string{"garbage"})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrInvalidCodeFormat, apperror.CodeOf(err))
}

func TestGetStockInfoLocalFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.TushareToken = ""

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	info, err := s.GetStockInfo(context.Background(), "688001")
	require.NoError(t, err)
	assert.Equal(t, "688001.SH", info.Symbol)
	assert.Equal(t, "科创板", info.Board)
	assert.Equal(t, "CNY", info.Currency)
}

func TestIdentifyMarketType(t *testing.T) {
	tests := []struct {
		code string
		want MarketType
	}{
		{"600000", MarketChina},
		{"600000.SH", MarketChina},
		{"000001.SZ", MarketChina},
		{"0700.HK", MarketHK},
		{"AAPL", MarketUS},
		{"BRK.A", MarketUS},
		{"", MarketUnknown},
		{"not-a-code!", MarketUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IdentifyMarketType(tt.code), tt.code)
	}
}
