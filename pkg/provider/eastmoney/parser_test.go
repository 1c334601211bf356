package eastmoney

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
)

const klineResponse = `{
	"rc": 0,
	"data": {
		"code": "600000",
		"market": 1,
		"name": "浦发银行",
		"klines": [
			"2024-03-01,7.00,7.10,7.15,6.95,300000,210000000.0",
			"2024-03-04,7.10,7.20,7.25,7.05,250000,180000000.0"
		]
	}
}`

func TestParseKlineResponse(t *testing.T) {
	bars, err := parseKlineResponse([]byte(klineResponse), "600000.SH")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	first := bars[0]
	assert.Equal(t, "600000.SH", first.Symbol)
	assert.Equal(t, "2024-03-01", core.FormatDate(first.Date))
	assert.Equal(t, 7.00, first.Open)
	assert.Equal(t, 7.10, first.Close)
	assert.Equal(t, 7.15, first.High)
	assert.Equal(t, 6.95, first.Low)
	assert.Equal(t, int64(300000), first.Volume)
	assert.Equal(t, 210000000.0, first.Amount)
}

func TestParseKlineResponseNullData(t *testing.T) {
	body := `{"rc": 0, "data": null}`

	_, err := parseKlineResponse([]byte(body), "600000.SH")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrProviderFetch, apperror.CodeOf(err))
}

func TestParseKlineResponseSkipsMalformedRows(t *testing.T) {
	body := `{
		"data": {
			"klines": [
				"2024-03-01,7.00,7.10,7.15,6.95,300000,210000000.0",
				"broken-row",
				"2024-03-04,7.10,7.20,7.25,7.05,notanumber,180000000.0"
			]
		}
	}`

	bars, err := parseKlineResponse([]byte(body), "600000.SH")
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestBuildURL(t *testing.T) {
	p := NewProvider()

	start, _ := core.ParseDate("2024-03-01")
	end, _ := core.ParseDate("2024-04-30")

	url := p.buildURL("1.600000", start, end)
	assert.Contains(t, url, "secid=1.600000")
	assert.Contains(t, url, "beg=20240301")
	assert.Contains(t, url, "end=20240430")
	assert.Contains(t, url, "klt=101")
}
