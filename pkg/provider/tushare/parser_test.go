package tushare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
)

const dailyResponse = `{
	"code": 0,
	"msg": "",
	"data": {
		"fields": ["ts_code", "trade_date", "open", "high", "low", "close", "vol", "amount"],
		"items": [
			["600000.SH", "20240304", 7.10, 7.25, 7.05, 7.20, 250000, 180000.5],
			["600000.SH", "20240301", 7.00, 7.15, 6.95, 7.10, 300000, 210000.0]
		]
	}
}`

func TestParseDailyResponse(t *testing.T) {
	bars, err := parseDailyResponse([]byte(dailyResponse), "600000.SH")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	// 降序响应被转为升序
	assert.Equal(t, "2024-03-01", core.FormatDate(bars[0].Date))
	assert.Equal(t, "2024-03-04", core.FormatDate(bars[1].Date))

	first := bars[0]
	assert.Equal(t, "600000.SH", first.Symbol)
	assert.Equal(t, 7.00, first.Open)
	assert.Equal(t, 7.15, first.High)
	assert.Equal(t, 6.95, first.Low)
	assert.Equal(t, 7.10, first.Close)
	assert.Equal(t, int64(300000), first.Volume)
	// 成交额从千元换算为元
	assert.Equal(t, 210000000.0, first.Amount)
}

func TestParseDailyResponseError(t *testing.T) {
	body := `{"code": 2002, "msg": "token无效", "data": null}`

	_, err := parseDailyResponse([]byte(body), "600000.SH")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrProviderFetch, apperror.CodeOf(err))
}

func TestParseDailyResponseEmpty(t *testing.T) {
	body := `{"code": 0, "msg": "", "data": {"fields": [], "items": []}}`

	bars, err := parseDailyResponse([]byte(body), "600000.SH")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestParseStockInfoResponse(t *testing.T) {
	body := `{
		"code": 0,
		"msg": "",
		"data": {
			"fields": ["ts_code", "name", "industry", "market", "list_date"],
			"items": [["600000.SH", "浦发银行", "银行", "主板", "19991110"]]
		}
	}`

	info, err := parseStockInfoResponse([]byte(body), "600000.SH")
	require.NoError(t, err)
	assert.Equal(t, "浦发银行", info.Name)
	assert.Equal(t, "银行", info.Industry)
	assert.Equal(t, "19991110", info.ListDate)
	assert.Equal(t, "CNY", info.Currency)
}

func TestParseStockInfoResponseNotFound(t *testing.T) {
	body := `{"code": 0, "msg": "", "data": {"fields": [], "items": []}}`

	_, err := parseStockInfoResponse([]byte(body), "600000.SH")
	assert.Error(t, err)
}

func TestNewProviderRequiresToken(t *testing.T) {
	_, err := NewProvider("")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrMissingCredential, apperror.CodeOf(err))

	p, err := NewProvider("some-token")
	require.NoError(t, err)
	assert.Equal(t, "tushare", p.Name())
	assert.True(t, p.IsHealthy())
}
