package symbol

import (
	"regexp"
	"strings"
)

// Market 交易所标识
type Market string

const (
	// MarketSH 上海证券交易所
	MarketSH Market = "SH"
	// MarketSZ 深圳证券交易所
	MarketSZ Market = "SZ"
	// MarketBJ 北京证券交易所
	MarketBJ Market = "BJ"
	// MarketUnknown 无法识别的市场
	MarketUnknown Market = ""
)

// boardPrefixes 板块定义：代码前3位到交易所的映射
// 未列出的前缀一律视为无法识别，不做猜测
var boardPrefixes = map[string]Market{
	"600": MarketSH, // 沪市主板
	"601": MarketSH, // 沪市主板
	"603": MarketSH, // 沪市主板
	"605": MarketSH, // 沪市主板
	"688": MarketSH, // 科创板
	"689": MarketSH, // 科创板
	"000": MarketSZ, // 深市主板
	"001": MarketSZ, // 深市主板
	"002": MarketSZ, // 深市中小板
	"003": MarketSZ, // 深市中小板
	"300": MarketSZ, // 创业板
	"301": MarketSZ, // 创业板
	"830": MarketBJ, // 北交所
	"831": MarketBJ, // 北交所
	"832": MarketBJ, // 北交所
	"833": MarketBJ, // 北交所
	"835": MarketBJ, // 北交所
	"836": MarketBJ, // 北交所
	"837": MarketBJ, // 北交所
	"838": MarketBJ, // 北交所
	"839": MarketBJ, // 北交所
}

var (
	patternWithSuffix = regexp.MustCompile(`^(\d{6})\.?(SH|SZ|BJ)$`)
	patternWithPrefix = regexp.MustCompile(`^(SH|SZ|BJ)(\d{6})$`)
	patternNumeric    = regexp.MustCompile(`^(\d{6})$`)
)

// Standardize 将各种格式的A股代码标准化为 000001.SZ 形式。
// 支持的输入格式：
//   - 000001（根据前缀推断市场）
//   - 000001.SZ / 000001SZ
//   - sz000001 / SZ000001
//
// 无法识别的输入返回空字符串，由调用方自行分支处理。
func Standardize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}

	if m := patternWithSuffix.FindStringSubmatch(code); m != nil {
		return m[1] + "." + m[2]
	}

	if m := patternWithPrefix.FindStringSubmatch(code); m != nil {
		return m[2] + "." + m[1]
	}

	if m := patternNumeric.FindStringSubmatch(code); m != nil {
		market := IdentifyMarket(m[1])
		if market == MarketUnknown {
			return ""
		}
		return m[1] + "." + string(market)
	}

	return ""
}

// IdentifyMarket 根据6位股票代码的前3位推断所属交易所。
// 前缀不在板块表中时返回 MarketUnknown。
func IdentifyMarket(code string) Market {
	if len(code) != 6 {
		return MarketUnknown
	}

	if market, ok := boardPrefixes[code[:3]]; ok {
		return market
	}
	return MarketUnknown
}

// IsValid 验证股票代码是否可被标准化
func IsValid(code string) bool {
	return Standardize(code) != ""
}

// Info 股票代码的市场信息
type Info struct {
	Code     string `json:"code"`      // 标准化代码，如 000001.SZ
	PureCode string `json:"pure_code"` // 6位数字代码
	Market   Market `json:"market"`    // 交易所
	Board    string `json:"board"`     // 板块名称
	Prefix   string `json:"prefix"`    // 代码前3位
}

// MarketInfo 获取股票的市场与板块信息，无法识别时返回 nil
func MarketInfo(code string) *Info {
	std := Standardize(code)
	if std == "" {
		return nil
	}

	pure, market := std[:6], Market(std[7:])
	prefix := pure[:3]

	board := "主板"
	switch {
	case prefix == "002" || prefix == "003":
		board = "中小板"
	case prefix == "300" || prefix == "301":
		board = "创业板"
	case prefix == "688" || prefix == "689":
		board = "科创板"
	case market == MarketBJ:
		board = "北交所"
	}

	return &Info{
		Code:     std,
		PureCode: pure,
		Market:   market,
		Board:    board,
		Prefix:   prefix,
	}
}

// ToTushareCode 转换为 TuShare 的 ts_code 格式（与标准格式一致）
func ToTushareCode(code string) string {
	return Standardize(code)
}

// ToQuoteCode 转换为行情接口使用的小写前缀格式
// 如：000001.SZ -> sz000001
func ToQuoteCode(code string) string {
	std := Standardize(code)
	if std == "" {
		return ""
	}
	return strings.ToLower(std[7:]) + std[:6]
}

// ToSecID 转换为东方财富接口使用的 secid 格式
// 沪市前缀为1，深市和北交所为0。如：600000.SH -> 1.600000
func ToSecID(code string) string {
	std := Standardize(code)
	if std == "" {
		return ""
	}
	if Market(std[7:]) == MarketSH {
		return "1." + std[:6]
	}
	return "0." + std[:6]
}

// PureCode 去除市场后缀，返回6位数字代码
func PureCode(code string) string {
	std := Standardize(code)
	if std == "" {
		return ""
	}
	return std[:6]
}
