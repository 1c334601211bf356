package selector

import (
	"regexp"
	"strings"
)

// MarketType 标的所属的市场类别
type MarketType string

const (
	MarketChina   MarketType = "A股"
	MarketHK      MarketType = "港股"
	MarketUS      MarketType = "美股"
	MarketUnknown MarketType = ""
)

var (
	// 6位数字，可带交易所后缀
	chinaPattern = regexp.MustCompile(`^\d{6}(\.(SH|SZ|BJ))?$`)
	// 4到5位数字加.HK后缀
	hkPattern = regexp.MustCompile(`^\d{4,5}\.HK$`)
	// 1到5位字母，可带交易所后缀
	usPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]{1,2})?$`)
)

// IdentifyMarketType 判断代码属于哪个市场
// 本模块只服务A股数据，其他市场的代码会被识别后拒绝。
func IdentifyMarketType(code string) MarketType {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return MarketUnknown
	}

	switch {
	case chinaPattern.MatchString(code):
		return MarketChina
	case hkPattern.MatchString(code):
		return MarketHK
	case usPattern.MatchString(code):
		return MarketUS
	default:
		return MarketUnknown
	}
}
