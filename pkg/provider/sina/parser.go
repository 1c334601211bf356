package sina

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"astockdata/pkg/core"
	"astockdata/pkg/symbol"
)

// gbkToUtf8 将GBK编码转换为UTF-8
func gbkToUtf8(gbkStr string) string {
	if gbkStr == "" {
		return ""
	}
	reader := transform.NewReader(strings.NewReader(gbkStr), simplifiedchinese.GBK.NewDecoder())
	data, err := io.ReadAll(reader)
	if err != nil {
		return gbkStr
	}
	return string(data)
}

// parseQuoteResponse 解析新浪行情响应
// 每行格式: var hq_str_sh600000="浦发银行,7.00,6.95,7.10,...";
func parseQuoteResponse(data string) []core.Quote {
	lines := strings.Split(data, ";")
	quotes := make([]core.Quote, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		sym := extractSymbol(parts[0])
		if sym == "" {
			continue
		}

		fields := strings.Split(strings.Trim(parts[1], ` "`), ",")
		if len(fields) < 32 {
			continue
		}

		price := parseFloat(fields[3])
		prevClose := parseFloat(fields[2])
		change := price - prevClose
		var changePercent float64
		if prevClose != 0 {
			changePercent = (change / prevClose) * 100
		}

		quotes = append(quotes, core.Quote{
			Symbol:        sym,
			Name:          gbkToUtf8(fields[0]),
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			Open:          parseFloat(fields[1]),
			High:          parseFloat(fields[4]),
			Low:           parseFloat(fields[5]),
			PrevClose:     prevClose,
			Volume:        parseInt(fields[8]) / 100, // 单位是股，转换为手
			Turnover:      parseFloat(fields[9]),
			Timestamp:     parseTime(fields[30], fields[31]),
		})
	}

	return quotes
}

// extractSymbol 从变量名中提取标准化代码, e.g., hq_str_sh600000 -> 600000.SH
func extractSymbol(rawVar string) string {
	parts := strings.Split(rawVar, "_")
	if len(parts) < 3 {
		return ""
	}
	return symbol.Standardize(parts[len(parts)-1])
}

// parseFloat 安全解析浮点数
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val
}

// parseInt 安全解析整数
func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// parseTime 解析日期和时间
func parseTime(dateStr, timeStr string) time.Time {
	layout := "2006-01-02 15:04:05"
	ts, err := time.ParseInLocation(layout, dateStr+" "+timeStr, time.Local)
	if err != nil {
		return time.Now()
	}
	return ts
}
