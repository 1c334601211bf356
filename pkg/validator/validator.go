package validator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"astockdata/pkg/calendar"
	"astockdata/pkg/core"
	"astockdata/pkg/logger"
	"astockdata/pkg/symbol"
)

// Weights 总评分中各子项的权重，权重会在计算时归一化
type Weights struct {
	Structure    float64 `json:"structure" mapstructure:"structure"`       // 结构完整性权重
	Consistency  float64 `json:"consistency" mapstructure:"consistency"`   // 价格一致性权重
	Completeness float64 `json:"completeness" mapstructure:"completeness"` // 数据完整度权重
}

// DefaultWeights 默认评分权重
func DefaultWeights() Weights {
	return Weights{
		Structure:    0.40,
		Consistency:  0.30,
		Completeness: 0.30,
	}
}

// Validator A股数据验证器
// 对获取到的日线数据做结构、一致性和完整性检查，产出0-100的质量评分。
type Validator struct {
	calendar *calendar.Calendar
	weights  Weights
	log      *logrus.Entry
}

// New 创建数据验证器
func New(cal *calendar.Calendar) *Validator {
	return &Validator{
		calendar: cal,
		weights:  DefaultWeights(),
		log:      logger.WithComponent("Validator"),
	}
}

// NewWithWeights 创建使用自定义权重的数据验证器
func NewWithWeights(cal *calendar.Calendar, weights Weights) *Validator {
	v := New(cal)
	if weights.Structure > 0 || weights.Consistency > 0 || weights.Completeness > 0 {
		v.weights = weights
	}
	return v
}

// BasicResult 基础结构验证结果
type BasicResult struct {
	Valid    bool     `json:"valid"`    // 是否通过验证
	Errors   []string `json:"errors"`   // 错误列表（导致验证失败）
	Warnings []string `json:"warnings"` // 警告列表（不影响验证结果）
}

// ValidateBasicStructure 验证数据的基础结构
// 检查数据非空、价格为正、OHLC逻辑关系和成交量非负。
// 任何形态的输入都不会导致panic，问题以逐条错误/警告形式返回。
func (v *Validator) ValidateBasicStructure(bars []core.DailyBar) BasicResult {
	result := BasicResult{}

	if len(bars) == 0 {
		result.Errors = append(result.Errors, "数据为空")
		return result
	}

	invalidPriceRows := 0
	invalidVolumeRows := 0

	for i, bar := range bars {
		if bar.Open <= 0 || bar.Close <= 0 || bar.High <= 0 || bar.Low <= 0 {
			invalidPriceRows++
		}

		if !barConsistent(bar) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("第%d行(%s): 价格逻辑错误 O=%.2f H=%.2f L=%.2f C=%.2f",
					i, core.FormatDate(bar.Date), bar.Open, bar.High, bar.Low, bar.Close))
		}

		if bar.Volume < 0 {
			invalidVolumeRows++
		}
	}

	if invalidPriceRows > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("存在无效价格数据: %d条", invalidPriceRows))
	}
	if invalidVolumeRows > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("成交量为负: %d条", invalidVolumeRows))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// barConsistent 判断单行数据是否满足 Low <= Open,Close <= High 且 Volume >= 0
func barConsistent(bar core.DailyBar) bool {
	return bar.High >= bar.Low &&
		bar.High >= bar.Open && bar.High >= bar.Close &&
		bar.Low <= bar.Open && bar.Low <= bar.Close &&
		bar.Volume >= 0
}

// LimitViolation 涨跌停违规记录
type LimitViolation struct {
	Date      string  `json:"date"`       // 违规日期
	Close     float64 `json:"close"`      // 收盘价
	PrevClose float64 `json:"prev_close"` // 前收盘价
	ChangePct float64 `json:"change_pct"` // 涨跌幅
	LimitRate float64 `json:"limit_rate"` // 对应板块的涨跌停限制
}

// 各板块涨跌停限制
const (
	limitRateMain    = 0.10 // 主板
	limitRateGrowth  = 0.20 // 科创板、创业板
	limitRateBeijing = 0.30 // 北交所
)

// limitRateFor 根据股票代码确定涨跌停限制
func limitRateFor(code string) float64 {
	info := symbol.MarketInfo(code)
	if info == nil {
		return limitRateMain
	}

	switch info.Board {
	case "科创板", "创业板":
		return limitRateGrowth
	case "北交所":
		return limitRateBeijing
	default:
		return limitRateMain
	}
}

// ValidatePriceLimit 检查日涨跌幅是否超出板块对应的涨跌停限制
func (v *Validator) ValidatePriceLimit(bars []core.DailyBar, code string) []LimitViolation {
	if len(bars) < 2 {
		return nil
	}

	sorted := sortByDate(bars)
	rate := limitRateFor(code)

	var violations []LimitViolation
	for i := 1; i < len(sorted); i++ {
		prevClose := sorted[i-1].Close
		if prevClose <= 0 {
			continue
		}

		changePct := (sorted[i].Close - prevClose) / prevClose
		// 允许微小误差
		if math.Abs(changePct) > rate+0.001 {
			violations = append(violations, LimitViolation{
				Date:      core.FormatDate(sorted[i].Date),
				Close:     sorted[i].Close,
				PrevClose: prevClose,
				ChangePct: changePct,
				LimitRate: rate,
			})
		}
	}

	return violations
}

// SuspensionDays 找出预期交易日中缺失数据的日期（可能的停牌日）
func (v *Validator) SuspensionDays(bars []core.DailyBar, start, end time.Time) []string {
	expected := v.calendar.TradingDays(start, end)
	if len(expected) == 0 {
		return nil
	}

	actual := make(map[string]struct{}, len(bars))
	for _, bar := range bars {
		actual[core.FormatDate(bar.Date)] = struct{}{}
	}

	var missing []string
	for _, day := range expected {
		key := core.FormatDate(day)
		if _, ok := actual[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// VolumeIssue 成交量异常记录
type VolumeIssue struct {
	Type        string `json:"type"`        // zero_volume / low_volume / high_volume
	Count       int    `json:"count"`       // 异常天数
	Description string `json:"description"` // 描述
}

// VolumeResult 成交量模式验证结果
type VolumeResult struct {
	Valid  bool          `json:"valid"`
	Issues []VolumeIssue `json:"issues"`
}

// 成交量异常判定的滚动窗口大小
const volumeWindow = 20

// ValidateVolumePattern 检查成交量模式中的异常
// 包括零成交量、相对20日均量异常偏低和异常偏高的情况。
func (v *Validator) ValidateVolumePattern(bars []core.DailyBar) VolumeResult {
	if len(bars) == 0 {
		return VolumeResult{Valid: false}
	}

	sorted := sortByDate(bars)
	var issues []VolumeIssue

	zeroDays := 0
	for _, bar := range sorted {
		if bar.Volume == 0 {
			zeroDays++
		}
	}
	if zeroDays > 0 {
		issues = append(issues, VolumeIssue{
			Type:        "zero_volume",
			Count:       zeroDays,
			Description: fmt.Sprintf("成交量为0的天数: %d", zeroDays),
		})
	}

	if len(sorted) > volumeWindow {
		lowDays := 0
		highDays := 0
		for i := volumeWindow; i < len(sorted); i++ {
			mean, std := volumeStats(sorted[i-volumeWindow : i])
			vol := float64(sorted[i].Volume)
			if vol > 0 && vol < mean*0.1 {
				lowDays++
			}
			if vol > mean+3*std {
				highDays++
			}
		}

		if lowDays > 0 {
			issues = append(issues, VolumeIssue{
				Type:        "low_volume",
				Count:       lowDays,
				Description: fmt.Sprintf("成交量异常低的天数: %d", lowDays),
			})
		}
		if highDays > 0 {
			issues = append(issues, VolumeIssue{
				Type:        "high_volume",
				Count:       highDays,
				Description: fmt.Sprintf("成交量异常高的天数: %d", highDays),
			})
		}
	}

	return VolumeResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}

// volumeStats 计算窗口内成交量的均值和标准差
func volumeStats(bars []core.DailyBar) (mean, std float64) {
	if len(bars) == 0 {
		return 0, 0
	}

	var sum float64
	for _, bar := range bars {
		sum += float64(bar.Volume)
	}
	mean = sum / float64(len(bars))

	var variance float64
	for _, bar := range bars {
		d := float64(bar.Volume) - mean
		variance += d * d
	}
	std = math.Sqrt(variance / float64(len(bars)))
	return mean, std
}

// Gap 数据缺口
type Gap struct {
	Start string `json:"start"` // 缺口起始日期
	End   string `json:"end"`   // 缺口结束日期
	Days  int    `json:"days"`  // 缺失的交易日数量
}

// ContinuityResult 数据连续性检查结果
type ContinuityResult struct {
	Continuous bool  `json:"continuous"`
	Gaps       []Gap `json:"gaps"`
}

// CheckDataContinuity 检查数据在其自身日期范围内的连续性
// 缺失的交易日按相邻与否归并为缺口区间。
func (v *Validator) CheckDataContinuity(bars []core.DailyBar) ContinuityResult {
	if len(bars) == 0 {
		return ContinuityResult{Continuous: false}
	}

	sorted := sortByDate(bars)
	start := sorted[0].Date
	end := sorted[len(sorted)-1].Date

	expected := v.calendar.TradingDays(start, end)
	actual := make(map[string]struct{}, len(sorted))
	for _, bar := range sorted {
		actual[core.FormatDate(bar.Date)] = struct{}{}
	}

	var gaps []Gap
	var current []string
	prevMissingIdx := -2

	flush := func() {
		if len(current) > 0 {
			gaps = append(gaps, Gap{
				Start: current[0],
				End:   current[len(current)-1],
				Days:  len(current),
			})
			current = nil
		}
	}

	for i, day := range expected {
		key := core.FormatDate(day)
		if _, ok := actual[key]; ok {
			continue
		}
		// 与上一个缺失交易日不相邻时开启新缺口
		if i != prevMissingIdx+1 {
			flush()
		}
		current = append(current, key)
		prevMissingIdx = i
	}
	flush()

	return ContinuityResult{
		Continuous: len(gaps) == 0,
		Gaps:       gaps,
	}
}

// sortByDate 返回按日期升序排列的副本，不修改原切片
func sortByDate(bars []core.DailyBar) []core.DailyBar {
	sorted := make([]core.DailyBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
