package eastmoney

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
)

// kline行中各字段的下标，对应 fields2=f51..f57
const (
	klineDate = iota
	klineOpen
	klineClose
	klineHigh
	klineLow
	klineVolume
	klineAmount
	klineFieldCount
)

// parseKlineResponse 解析K线接口的响应
// 响应格式: {"data":{"code":"600000","klines":["2024-03-01,7.00,7.10,7.15,6.95,300000,2.1E8",...]}}
// 每行按 日期,开盘,收盘,最高,最低,成交量,成交额 排列。
func parseKlineResponse(body []byte, symbol string) ([]core.DailyBar, error) {
	root := gjson.ParseBytes(body)

	data := root.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, apperror.New(apperror.ErrProviderFetch, "东方财富接口未返回数据").
			WithContext("symbol", symbol)
	}

	klines := data.Get("klines").Array()
	bars := make([]core.DailyBar, 0, len(klines))

	for _, line := range klines {
		bar, ok := parseKlineRow(line.String(), symbol)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// parseKlineRow 解析单行K线数据
func parseKlineRow(line, symbol string) (core.DailyBar, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < klineFieldCount {
		return core.DailyBar{}, false
	}

	date, err := core.ParseDate(parts[klineDate])
	if err != nil {
		return core.DailyBar{}, false
	}

	open, err1 := strconv.ParseFloat(parts[klineOpen], 64)
	closePrice, err2 := strconv.ParseFloat(parts[klineClose], 64)
	high, err3 := strconv.ParseFloat(parts[klineHigh], 64)
	low, err4 := strconv.ParseFloat(parts[klineLow], 64)
	volume, err5 := strconv.ParseInt(parts[klineVolume], 10, 64)
	amount, err6 := strconv.ParseFloat(parts[klineAmount], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return core.DailyBar{}, false
	}

	return core.DailyBar{
		Symbol: symbol,
		Date:   date,
		Open:   open,
		Close:  closePrice,
		High:   high,
		Low:    low,
		Volume: volume,
		Amount: amount,
	}, true
}
