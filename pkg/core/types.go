package core

import (
	"time"
)

// DailyBar 单个交易日的K线数据
// 所有提供商返回的历史数据都统一转换为此结构
type DailyBar struct {
	Symbol string    `json:"symbol"` // 标准化股票代码，如 000001.SZ
	Date   time.Time `json:"date"`   // 交易日期
	Open   float64   `json:"open"`   // 开盘价
	Close  float64   `json:"close"`  // 收盘价
	High   float64   `json:"high"`   // 最高价
	Low    float64   `json:"low"`    // 最低价
	Volume int64     `json:"volume"` // 成交量(手)
	Amount float64   `json:"amount"` // 成交额(元)
}

// Quote 实时行情快照
type Quote struct {
	Symbol        string    `json:"symbol"`         // 股票代码
	Name          string    `json:"name"`           // 股票名称
	Price         float64   `json:"price"`          // 当前价格
	Change        float64   `json:"change"`         // 涨跌额
	ChangePercent float64   `json:"change_percent"` // 涨跌幅(%)
	Open          float64   `json:"open"`           // 开盘价
	High          float64   `json:"high"`           // 最高价
	Low           float64   `json:"low"`            // 最低价
	PrevClose     float64   `json:"prev_close"`     // 昨收价
	Volume        int64     `json:"volume"`         // 成交量(手)
	Turnover      float64   `json:"turnover"`       // 成交额(元)
	Timestamp     time.Time `json:"timestamp"`      // 行情时间
}

// StockInfo 股票基本信息
type StockInfo struct {
	Symbol   string `json:"symbol"`    // 标准化代码
	Name     string `json:"name"`      // 股票名称
	Industry string `json:"industry"`  // 所属行业
	Market   string `json:"market"`    // 市场 (SH/SZ/BJ)
	Board    string `json:"board"`     // 板块
	ListDate string `json:"list_date"` // 上市日期
	Currency string `json:"currency"`  // 计价货币
}

// DateLayout 模块内日期字符串的统一格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 格式的日期字符串
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FormatDate 将时间格式化为 YYYY-MM-DD 字符串
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
