package tushare

import (
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"astockdata/pkg/apperror"
	"astockdata/pkg/core"
)

// parseDailyResponse 解析daily接口的响应
// 响应格式: {"code":0,"msg":"","data":{"fields":[...],"items":[[...],...]}}
// 返回的数据按日期升序排列。
func parseDailyResponse(body []byte, symbol string) ([]core.DailyBar, error) {
	root := gjson.ParseBytes(body)

	if code := root.Get("code").Int(); code != 0 {
		return nil, apperror.New(apperror.ErrProviderFetch, "Tushare接口返回错误").
			WithContext("code", code).
			WithContext("msg", root.Get("msg").String())
	}

	idx := fieldIndex(root.Get("data.fields"))
	items := root.Get("data.items").Array()

	bars := make([]core.DailyBar, 0, len(items))
	for _, item := range items {
		row := item.Array()

		date, err := time.ParseInLocation("20060102", field(row, idx, "trade_date").String(), time.Local)
		if err != nil {
			continue
		}

		bars = append(bars, core.DailyBar{
			Symbol: symbol,
			Date:   date,
			Open:   field(row, idx, "open").Float(),
			High:   field(row, idx, "high").Float(),
			Low:    field(row, idx, "low").Float(),
			Close:  field(row, idx, "close").Float(),
			Volume: field(row, idx, "vol").Int(),
			// Tushare的成交额单位是千元
			Amount: field(row, idx, "amount").Float() * 1000,
		})
	}

	// daily接口按日期降序返回
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, nil
}

// parseStockInfoResponse 解析stock_basic接口的响应
func parseStockInfoResponse(body []byte, symbol string) (*core.StockInfo, error) {
	root := gjson.ParseBytes(body)

	if code := root.Get("code").Int(); code != 0 {
		return nil, apperror.New(apperror.ErrProviderFetch, "Tushare接口返回错误").
			WithContext("code", code).
			WithContext("msg", root.Get("msg").String())
	}

	idx := fieldIndex(root.Get("data.fields"))
	items := root.Get("data.items").Array()
	if len(items) == 0 {
		return nil, apperror.New(apperror.ErrProviderFetch, "未找到股票基本信息").
			WithContext("symbol", symbol)
	}

	row := items[0].Array()
	return &core.StockInfo{
		Symbol:   symbol,
		Name:     field(row, idx, "name").String(),
		Industry: field(row, idx, "industry").String(),
		Market:   field(row, idx, "market").String(),
		ListDate: field(row, idx, "list_date").String(),
		Currency: "CNY",
	}, nil
}

// fieldIndex 把fields数组转换为字段名到下标的映射
func fieldIndex(fields gjson.Result) map[string]int {
	idx := make(map[string]int)
	for i, f := range fields.Array() {
		idx[f.String()] = i
	}
	return idx
}

// field 按字段名取出行中的值，字段缺失时返回零值
func field(row []gjson.Result, idx map[string]int, name string) gjson.Result {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return gjson.Result{}
	}
	return row[i]
}
