package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStandardize 测试各种输入格式的标准化
func TestStandardize(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"000001", "000001.SZ"},
		{"000001.SZ", "000001.SZ"},
		{"sz000001", "000001.SZ"},
		{"SZ000001", "000001.SZ"},
		{"600000", "600000.SH"},
		{"600000.SH", "600000.SH"},
		{"sh600000", "600000.SH"},
		{"300750", "300750.SZ"},
		{"688981", "688981.SH"},
		{"830799", "830799.BJ"},
		{"835174", "835174.BJ"},
		{" 600000 ", "600000.SH"},
		{"600000sh", "600000.SH"}, // 后缀也可省略点号
		{"invalid", ""},
		{"", ""},
		{"12345", ""},
		{"1234567", ""},
		{"999999", ""}, // 未分配的前缀不做猜测
		{"400001", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, Standardize(c.input), "输入: %q", c.input)
	}
}

// TestStandardizeIdempotent 标准化结果再次标准化应保持不变
func TestStandardizeIdempotent(t *testing.T) {
	inputs := []string{"000001", "600000", "300750", "688981", "830799", "sz000001", "600000.SH"}
	for _, in := range inputs {
		once := Standardize(in)
		assert.NotEmpty(t, once)
		assert.Equal(t, once, Standardize(once), "输入: %q", in)
	}
}

// TestIdentifyMarket 测试前缀到交易所的映射
func TestIdentifyMarket(t *testing.T) {
	assert.Equal(t, MarketSH, IdentifyMarket("600000"))
	assert.Equal(t, MarketSH, IdentifyMarket("601988"))
	assert.Equal(t, MarketSH, IdentifyMarket("603501"))
	assert.Equal(t, MarketSH, IdentifyMarket("605358"))
	assert.Equal(t, MarketSH, IdentifyMarket("688981"))
	assert.Equal(t, MarketSZ, IdentifyMarket("000001"))
	assert.Equal(t, MarketSZ, IdentifyMarket("002415"))
	assert.Equal(t, MarketSZ, IdentifyMarket("300750"))
	assert.Equal(t, MarketSZ, IdentifyMarket("301269"))
	assert.Equal(t, MarketBJ, IdentifyMarket("832566"))
	assert.Equal(t, MarketBJ, IdentifyMarket("839725"))

	// 未分配前缀和非法长度
	assert.Equal(t, MarketUnknown, IdentifyMarket("999999"))
	assert.Equal(t, MarketUnknown, IdentifyMarket("123456"))
	assert.Equal(t, MarketUnknown, IdentifyMarket("60000"))
	assert.Equal(t, MarketUnknown, IdentifyMarket(""))
}

// TestMarketInfo 测试板块信息
func TestMarketInfo(t *testing.T) {
	info := MarketInfo("000001")
	if assert.NotNil(t, info) {
		assert.Equal(t, "000001.SZ", info.Code)
		assert.Equal(t, "000001", info.PureCode)
		assert.Equal(t, MarketSZ, info.Market)
		assert.Equal(t, "主板", info.Board)
	}

	info = MarketInfo("300750")
	if assert.NotNil(t, info) {
		assert.Equal(t, "创业板", info.Board)
	}

	info = MarketInfo("688981")
	if assert.NotNil(t, info) {
		assert.Equal(t, "科创板", info.Board)
	}

	info = MarketInfo("002415")
	if assert.NotNil(t, info) {
		assert.Equal(t, "中小板", info.Board)
	}

	info = MarketInfo("832566")
	if assert.NotNil(t, info) {
		assert.Equal(t, "北交所", info.Board)
	}

	assert.Nil(t, MarketInfo("not-a-code"))
}

// TestFormatConversions 测试提供商格式转换
func TestFormatConversions(t *testing.T) {
	assert.Equal(t, "000001.SZ", ToTushareCode("sz000001"))
	assert.Equal(t, "sz000001", ToQuoteCode("000001"))
	assert.Equal(t, "sh600000", ToQuoteCode("600000.SH"))
	assert.Equal(t, "1.600000", ToSecID("600000"))
	assert.Equal(t, "0.000001", ToSecID("000001"))
	assert.Equal(t, "0.832566", ToSecID("832566"))
	assert.Equal(t, "000001", PureCode("000001.SZ"))

	assert.Empty(t, ToQuoteCode("bogus"))
	assert.Empty(t, ToSecID("bogus"))
	assert.Empty(t, PureCode("bogus"))
}

// TestIsValid 测试代码有效性判断
func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("000001"))
	assert.True(t, IsValid("600000.SH"))
	assert.False(t, IsValid("AAPL"))
	assert.False(t, IsValid("999999"))
}
